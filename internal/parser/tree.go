package parser

import (
	"strings"

	"github.com/mica-lang/mica/internal/lexer"
)

// Tree is the generic syntax tree produced by the parser. Every node is
// labeled with a token; grammar productions without a source token of
// their own (program root, declarations, blocks) carry a synthetic
// marker token. Each node owns its children outright and the tree is
// never mutated after parsing.
type Tree struct {
	Token    lexer.Token
	Children []*Tree
}

// NewTree returns a leaf node labeled with the given token.
func NewTree(tok lexer.Token) *Tree {
	return &Tree{Token: tok}
}

// Push appends a child node.
func (t *Tree) Push(child *Tree) {
	t.Children = append(t.Children, child)
}

// String renders the tree one node per line, indented two spaces per
// nesting level.
func (t *Tree) String() string {
	var sb strings.Builder
	t.write(&sb, 0)
	return sb.String()
}

func (t *Tree) write(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(t.Token.String())
	sb.WriteByte('\n')
	for _, c := range t.Children {
		c.write(sb, depth+1)
	}
}
