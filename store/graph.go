package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hazyhaar/onesource/extract"
)

// Node types and edge types written into the graph beyond the content node
// types themselves.
const (
	NodeListItem      = "list_item"
	NodeTableHeadRow  = "table_head_row"
	NodeTableHeadCell = "table_head_cell"
	NodeTableBodyRow  = "table_body_row"
	NodeTableBodyCell = "table_body_cell"

	EdgeBefore     = "before"
	EdgeAfter      = "after"
	EdgeHasHeading = "has_heading"
	EdgeHasLink    = "has_link"
	EdgeItemOf     = "item_of"
	EdgeCellOf     = "cell_of"
	EdgeHeadRowOf  = "head_row_of"
	EdgeBodyRowOf  = "body_row_of"
)

// WriteGraph stores one document's content nodes as a graph, in a single
// transaction. Sequential nodes are linked in both directions, and so are
// consecutive list items, table rows and cells within a row; every
// non-heading node points at the heading above it, and nodes whose text
// references a link by name point at that link's node.
func (s *Store) WriteGraph(ctx context.Context, nodes []extract.ContentNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var prevID, prevHeadingID string
	links := map[string]string{} // link text -> node id

	for i := range nodes {
		node := &nodes[i]
		id, err := writeContentNode(tx, node)
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}

		if err := linkSequential(tx, prevID, id); err != nil {
			return err
		}
		prevID = id

		if node.Type == extract.NodeHeading {
			prevHeadingID = id
		} else if prevHeadingID != "" {
			if err := insertEdge(tx, id, prevHeadingID, EdgeHasHeading); err != nil {
				return err
			}
		}

		if node.Type == extract.NodeLink && node.Text != "" {
			links[node.Text] = id
		}
		for _, name := range extract.LinkedTexts(node.Text) {
			if linkID, ok := links[name]; ok && linkID != id {
				if err := insertEdge(tx, id, linkID, EdgeHasLink); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// writeContentNode inserts one content node with its children and returns
// the node's id.
func writeContentNode(tx execer, node *extract.ContentNode) (string, error) {
	isQuestion := node.IsQuestion != nil && *node.IsQuestion

	switch node.Type {
	case extract.NodeText, extract.NodeHeading, extract.NodeLink:
		id := uuid.NewString()
		err := insertNode(tx, Node{
			ID:         id,
			Text:       extract.StripLinkMarkers(node.Text),
			Type:       node.Type,
			URL:        node.URL,
			IsQuestion: isQuestion,
		})
		return id, err

	case extract.NodeList:
		listID := uuid.NewString()
		if err := insertNode(tx, Node{ID: listID, Type: extract.NodeList}); err != nil {
			return "", err
		}
		var prevItemID string
		for i, item := range node.Items {
			itemID := uuid.NewString()
			err := insertNode(tx, Node{
				ID:       itemID,
				Text:     extract.StripLinkMarkers(item),
				Type:     NodeListItem,
				SeqIndex: i,
			})
			if err != nil {
				return "", err
			}
			if err := insertEdge(tx, itemID, listID, EdgeItemOf); err != nil {
				return "", err
			}
			if err := linkSequential(tx, prevItemID, itemID); err != nil {
				return "", err
			}
			prevItemID = itemID
		}
		return listID, nil

	case extract.NodeTable:
		tableID := uuid.NewString()
		if err := insertNode(tx, Node{ID: tableID, Type: extract.NodeTable}); err != nil {
			return "", err
		}
		// The row chain runs through the whole table, head rows first.
		lastHeadRowID, err := writeRows(tx, tableID, node.Head, NodeTableHeadRow, NodeTableHeadCell, EdgeHeadRowOf, "")
		if err != nil {
			return "", err
		}
		if _, err := writeRows(tx, tableID, node.Body, NodeTableBodyRow, NodeTableBodyCell, EdgeBodyRowOf, lastHeadRowID); err != nil {
			return "", err
		}
		return tableID, nil
	}
	return "", nil
}

// writeRows inserts one row group of a table, chaining consecutive rows
// onto prevRowID and consecutive cells within each row. It returns the id
// of the group's last row so the next group continues the chain.
func writeRows(tx execer, tableID string, rows [][]string, rowType, cellType, rowEdge, prevRowID string) (string, error) {
	for i, row := range rows {
		rowID := uuid.NewString()
		if err := insertNode(tx, Node{ID: rowID, Type: rowType, SeqIndex: i}); err != nil {
			return "", err
		}
		if err := insertEdge(tx, rowID, tableID, rowEdge); err != nil {
			return "", err
		}
		if err := linkSequential(tx, prevRowID, rowID); err != nil {
			return "", err
		}
		prevRowID = rowID
		var prevCellID string
		for j, cell := range row {
			cellID := uuid.NewString()
			err := insertNode(tx, Node{
				ID:       cellID,
				Text:     extract.StripLinkMarkers(cell),
				Type:     cellType,
				SeqIndex: j,
			})
			if err != nil {
				return "", err
			}
			if err := insertEdge(tx, cellID, rowID, EdgeCellOf); err != nil {
				return "", err
			}
			if err := linkSequential(tx, prevCellID, cellID); err != nil {
				return "", err
			}
			prevCellID = cellID
		}
	}
	return prevRowID, nil
}

// linkSequential writes the before/after edge pair between two consecutive
// nodes. A blank prevID means the chain has no predecessor yet.
func linkSequential(tx execer, prevID, id string) error {
	if prevID == "" {
		return nil
	}
	if err := insertEdge(tx, prevID, id, EdgeBefore); err != nil {
		return err
	}
	return insertEdge(tx, id, prevID, EdgeAfter)
}
