package extract

import (
	"strconv"
	"time"
)

// Column types reported in table fields.
const (
	TypeAny      = "any"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypeInteger  = "integer"
	TypeNumber   = "number"
	TypeString   = "string"
	TypeTime     = "time"
)

// Specificity order used to break ties when a column's values guess
// different types.
var typeOrder = []string{
	TypeDatetime, TypeTime, TypeDate, TypeInteger, TypeNumber, TypeBoolean, TypeString, TypeAny,
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// GuessType guesses the column type of a single cell value, trying the more
// specific types first.
func GuessType(value string) string {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return TypeDatetime
		}
	}
	if _, err := time.Parse("15:04:05", value); err == nil {
		return TypeTime
	}
	if _, err := time.Parse("2006-01-02", value); err == nil {
		return TypeDate
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return TypeNumber
	}
	switch value {
	case "true", "True", "TRUE", "false", "False", "FALSE":
		return TypeBoolean
	}
	return TypeString
}

// InferFields infers one field per column name from the body rows. Each
// column takes its most frequent guessed type; ties go to the more specific
// type. Columns with no values report "any".
func InferFields(body [][]string, names []string) []Field {
	counts := make([]map[string]int, len(names))
	for i := range counts {
		counts[i] = make(map[string]int)
	}
	for _, row := range body {
		for i, value := range row {
			if i >= len(names) {
				break
			}
			counts[i][GuessType(value)]++
		}
	}

	fields := make([]Field, len(names))
	for i, name := range names {
		best := TypeAny
		bestCount := 0
		for _, t := range typeOrder {
			if c := counts[i][t]; c > bestCount {
				best = t
				bestCount = c
			}
		}
		fields[i] = Field{Name: name, Type: best}
	}
	return fields
}
