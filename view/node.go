package view

import (
	"html"
	"strings"
)

// Node is one element of a rendered tree: either a text element (P, H2) or
// a container (Div).
type Node struct {
	Tag      string
	Text     string
	Children []*Node
}

func P(text string) *Node  { return &Node{Tag: "p", Text: text} }
func H2(text string) *Node { return &Node{Tag: "h2", Text: text} }

func Div(children ...*Node) *Node {
	return &Node{Tag: "div", Children: children}
}

// Lines flattens the tree into its text, one entry per text element, in
// document order.
func (n *Node) Lines() []string {
	if n == nil {
		return nil
	}
	var lines []string
	if n.Text != "" {
		lines = append(lines, n.Text)
	}
	for _, child := range n.Children {
		lines = append(lines, child.Lines()...)
	}
	return lines
}

// String renders the tree as plain text, one line per text element.
func (n *Node) String() string {
	return strings.Join(n.Lines(), "\n")
}

// HTML renders the tree as escaped markup.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n == nil {
		return
	}
	b.WriteString("<" + n.Tag + ">")
	b.WriteString(html.EscapeString(n.Text))
	for _, child := range n.Children {
		child.writeHTML(b)
	}
	b.WriteString("</" + n.Tag + ">")
}
