package mutation

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
)

// PointKind identifies where an InsertionPoint puts new code.
type PointKind int

const (
	KindBeginningOfBlock PointKind = iota
	KindBefore
	KindAfter
	KindStructLiteralField
	KindReplace
	KindListLiteralElement
	KindWrap
	KindEditing
)

func (k PointKind) String() string {
	switch k {
	case KindBeginningOfBlock:
		return "beginning_of_block"
	case KindBefore:
		return "before"
	case KindAfter:
		return "after"
	case KindStructLiteralField:
		return "struct_literal_field"
	case KindReplace:
		return "replace"
	case KindListLiteralElement:
		return "list_literal_element"
	case KindWrap:
		return "wrap"
	case KindEditing:
		return "editing"
	}
	return "unknown"
}

// InsertionPoint says where inserted code goes. ID names the block, sibling,
// field, list or node the kind refers to; Pos is only used by
// KindListLiteralElement.
type InsertionPoint struct {
	Kind PointKind
	ID   ast.ID
	Pos  int
}

// BeginningOfBlock inserts at the top of a block.
func BeginningOfBlock(blockID ast.ID) InsertionPoint {
	return InsertionPoint{Kind: KindBeginningOfBlock, ID: blockID}
}

// Before inserts ahead of a block expression.
func Before(id ast.ID) InsertionPoint { return InsertionPoint{Kind: KindBefore, ID: id} }

// After inserts behind a block expression.
func After(id ast.ID) InsertionPoint { return InsertionPoint{Kind: KindAfter, ID: id} }

// StructLiteralField overwrites the value held by a struct literal field.
func StructLiteralField(fieldID ast.ID) InsertionPoint {
	return InsertionPoint{Kind: KindStructLiteralField, ID: fieldID}
}

// Replace swaps out a node.
func Replace(id ast.ID) InsertionPoint { return InsertionPoint{Kind: KindReplace, ID: id} }

// ListLiteralElement inserts an element into a list literal at pos.
func ListLiteralElement(listID ast.ID, pos int) InsertionPoint {
	return InsertionPoint{Kind: KindListLiteralElement, ID: listID, Pos: pos}
}

// Wrap swaps out a node for code that already embeds it.
func Wrap(id ast.ID) InsertionPoint { return InsertionPoint{Kind: KindWrap, ID: id} }

// Editing marks a node as being edited in place. It is a UI mode and never
// a target for InsertCode.
func Editing(id ast.ID) InsertionPoint { return InsertionPoint{Kind: KindEditing, ID: id} }

// NodeToSelectWhenEditing returns the node the cursor should rest on while
// the insertion point is being edited, if any.
func (p InsertionPoint) NodeToSelectWhenEditing() (ast.ID, bool) {
	switch p.Kind {
	case KindStructLiteralField, KindEditing, KindListLiteralElement:
		return p.ID, true
	}
	return ast.NoID, false
}

// AcceptsMany reports whether the point can take several nodes at once.
func (p InsertionPoint) AcceptsMany() bool {
	switch p.Kind {
	case KindBeginningOfBlock, KindBefore, KindAfter:
		return true
	}
	return false
}

func (p InsertionPoint) String() string {
	if p.Kind == KindListLiteralElement {
		return fmt.Sprintf("%s(%s, %d)", p.Kind, p.ID, p.Pos)
	}
	return fmt.Sprintf("%s(%s)", p.Kind, p.ID)
}
