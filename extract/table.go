package extract

import (
	"fmt"
	"strings"
)

type tableCell struct {
	kind string // th or td
	text string
}

type tableFrame struct {
	row       []tableCell
	current   string
	headLatch bool
	bodyLatch bool
	table     *ContentNode
}

// TableExtractor emits table nodes with head and body rows and inferred
// column types. A stack of in-progress contexts supports tables nested in
// cells: the outer cell's text gains a {table:N} reference token, the
// reference is recorded on the outer node, and the inner table gets the
// next global index. The index counter resets once the stack empties.
type TableExtractor struct {
	row       []tableCell
	current   string
	inTable   bool
	headLatch bool
	bodyLatch bool
	table     *ContentNode
	stack     []tableFrame
	index     int
	anchor    anchorState
}

func NewTableExtractor() *TableExtractor {
	return &TableExtractor{index: 1}
}

func (x *TableExtractor) Extract(kind EventKind, el *Element, res *Result) {
	if el.Tag == "table" {
		if kind == StartEvent {
			x.openTable()
		} else {
			x.closeTable(res)
		}
		return
	}
	if !x.inTable {
		return
	}

	switch el.Tag {
	case "thead":
		if kind == StartEvent {
			x.headLatch = true
			x.bodyLatch = false
		}
	case "tbody":
		// The parser inserts tbody around bare rows, so its presence
		// cannot latch body mode; only an actual body row does.
		if kind == StartEvent {
			x.headLatch = false
		}
	case "tr":
		if kind == EndEvent {
			x.closeRow(res)
		}
	case "th", "td":
		if kind == EndEvent {
			x.row = append(x.row, tableCell{kind: el.Tag, text: CleanText(x.current)})
		}
		x.current = ""
	case "a":
		if kind == StartEvent {
			x.anchor.open(el, &x.current)
		} else {
			x.anchor.close(&x.current, res)
		}
	}

	if kind == StartEvent && el.Text != "" {
		x.current += el.Text
		x.anchor.accumulate(el.Text)
	} else if kind == EndEvent && el.Tail != "" {
		x.current += el.Tail
		x.anchor.accumulate(el.Tail)
	}
}

func (x *TableExtractor) openTable() {
	if x.inTable {
		ref := fmt.Sprintf("table:%d", x.index)
		x.current += "{" + ref + "} "
		x.table.References = append(x.table.References, ref)
		x.stack = append(x.stack, tableFrame{
			row:       x.row,
			current:   x.current,
			headLatch: x.headLatch,
			bodyLatch: x.bodyLatch,
			table:     x.table,
		})
	}
	x.row = nil
	x.current = ""
	x.inTable = true
	x.headLatch = false
	x.bodyLatch = false
	x.table = &ContentNode{Type: NodeTable, Index: x.index}
	x.index++
}

func (x *TableExtractor) closeTable(res *Result) {
	if !x.inTable {
		return
	}
	table := x.table
	if len(table.Body) > 0 {
		if len(table.Head) > 0 {
			table.Fields = InferFields(table.Body, table.Head[0])
		} else {
			first := table.Body[0]
			names := make([]string, len(first))
			for i := range first {
				names[i] = fmt.Sprintf("name%d", i+1)
			}
			fields := InferFields(table.Body, names)
			if len(table.Body) > 1 && headerDisagrees(fields, first) {
				table.Head = [][]string{first}
				table.Body = table.Body[1:]
				for i := range fields {
					if i < len(first) {
						fields[i].Name = first[i]
					}
				}
			}
			table.Fields = fields
		}
	}
	res.Nodes = append(res.Nodes, *table)

	if n := len(x.stack); n > 0 {
		frame := x.stack[n-1]
		x.stack = x.stack[:n-1]
		x.row = frame.row
		x.current = frame.current
		x.headLatch = frame.headLatch
		x.bodyLatch = frame.bodyLatch
		x.table = frame.table
	} else {
		x.inTable = false
		x.headLatch = false
		x.bodyLatch = false
		x.current = ""
		x.row = nil
		x.table = nil
		x.index = 1
	}
}

func (x *TableExtractor) closeRow(res *Result) {
	if x.rowHasContent() {
		values := make([]string, len(x.row))
		for i, c := range x.row {
			values[i] = c.text
		}
		res.TextList = append(res.TextList, StripLinkMarkers(strings.Join(values, "\t")))
		if !x.headLatch && (x.bodyLatch || !x.isHeaderRow()) {
			x.table.Body = append(x.table.Body, values)
			x.headLatch = false
			x.bodyLatch = true
		} else {
			x.table.Head = append(x.table.Head, values)
		}
	}
	x.current = ""
	x.row = nil
}

func (x *TableExtractor) rowHasContent() bool {
	for _, c := range x.row {
		if c.text != "" {
			return true
		}
	}
	return false
}

func (x *TableExtractor) isHeaderRow() bool {
	for _, c := range x.row {
		if c.kind != "th" {
			return false
		}
	}
	return true
}

// headerDisagrees reports whether the candidate header row's own cell types
// differ from the inferred column types anywhere. Disagreement suggests the
// first row is a genuine header rather than data.
func headerDisagrees(fields []Field, first []string) bool {
	for i, f := range fields {
		if i >= len(first) {
			break
		}
		if f.Type != GuessType(first[i]) {
			return true
		}
	}
	return false
}
