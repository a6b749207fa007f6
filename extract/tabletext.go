package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DataType classifies a single table cell value for natural-text rendering.
type DataType int

const (
	DataNull DataType = iota
	DataBit
	DataBool
	DataInt
	DataFloat
	DataDate
	DataString
)

var (
	trueValues  = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "on": true}
	falseValues = map[string]bool{"false": true, "f": true, "no": true, "n": true, "off": true}
	nullValues  = map[string]bool{"null": true, "none": true, "na": true, "_": true, "-": true}
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

// InferValue classifies a cell value. Integers 0 and 1 classify as bit so
// columns of flags read as boolean rather than numeric.
func InferValue(value string) DataType {
	v := strings.TrimSpace(value)
	if v == "" || nullValues[strings.ToLower(v)] {
		return DataNull
	}
	lower := strings.ToLower(v)
	if trueValues[lower] || falseValues[lower] {
		return DataBool
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f == float64(int64(f)) {
			if f == 0 || f == 1 {
				return DataBit
			}
			return DataInt
		}
		return DataFloat
	}
	if _, ok := parseDate(v); ok {
		return DataDate
	}
	return DataString
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ColumnType merges the cell types seen in one column. Mixing with string
// or date degrades to string; bit and bool merge to bool; int widens to
// float.
func ColumnType(types map[DataType]bool) DataType {
	nonNull := make(map[DataType]bool)
	for t := range types {
		if t != DataNull {
			nonNull[t] = true
		}
	}
	switch len(nonNull) {
	case 0:
		return DataNull
	case 1:
		for t := range nonNull {
			if t == DataBit {
				return DataBool
			}
			return t
		}
	}
	if nonNull[DataString] || nonNull[DataDate] {
		return DataString
	}
	if !nonNull[DataInt] && !nonNull[DataFloat] {
		return DataBool
	}
	if nonNull[DataBool] {
		return DataString
	}
	if nonNull[DataFloat] {
		return DataFloat
	}
	return DataInt
}

// TableText renders a table node as natural-language sentences for plain
// text consumers. When the table has a header and the first column reads
// as row labels, each cell becomes "The <column> of <label> is <value>.";
// otherwise rows are joined value lists.
func TableText(table *ContentNode) []string {
	rows := make([][]string, 0, len(table.Head)+len(table.Body))
	rows = append(rows, table.Head...)
	rows = append(rows, table.Body...)
	if len(rows) == 0 {
		return nil
	}

	hasHeader := len(table.Head) > 0
	header := rows[0]
	dataRows := rows
	if hasHeader {
		dataRows = rows[len(table.Head):]
	} else if len(rows) > 1 && rowIsAllStrings(rows[0]) && !rowIsAllStrings(rows[1]) {
		hasHeader = true
		dataRows = rows[1:]
	}

	var out []string
	if hasHeader && len(header) > 1 && firstColumnIsLabels(dataRows) {
		for _, row := range dataRows {
			label := row[0]
			for i := 1; i < len(row) && i < len(header); i++ {
				out = append(out, fmt.Sprintf("The %s of %s is %s.",
					strings.ReplaceAll(header[i], "_", " "), label, ValueText(row[i])))
			}
		}
		return out
	}
	for _, row := range dataRows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = ValueText(v)
		}
		out = append(out, strings.Join(values, " "))
	}
	return out
}

// ValueText renders a single cell value for prose.
func ValueText(value string) string {
	switch InferValue(value) {
	case DataNull:
		return "NA"
	case DataBool:
		if trueValues[strings.ToLower(strings.TrimSpace(value))] {
			return "true"
		}
		return "false"
	case DataInt:
		f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return humanize.Comma(int64(f))
	case DataFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return humanize.CommafWithDigits(f, 2)
	case DataDate:
		t, _ := parseDate(strings.TrimSpace(value))
		return t.Format("January 2, 2006")
	default:
		return value
	}
}

func rowIsAllStrings(row []string) bool {
	for _, v := range row {
		if InferValue(v) != DataString {
			return false
		}
	}
	return len(row) > 0
}

// firstColumnIsLabels reports whether the leading column looks like mostly
// unique text labels rather than data.
func firstColumnIsLabels(rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	seen := make(map[string]bool)
	textCount := 0
	for _, row := range rows {
		if len(row) == 0 {
			return false
		}
		seen[row[0]] = true
		if InferValue(row[0]) == DataString {
			textCount++
		}
	}
	unique := float64(len(seen)) / float64(len(rows))
	return textCount == len(rows) && unique >= 0.9
}
