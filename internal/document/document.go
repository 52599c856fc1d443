package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is a single element of a parsed document.
type Node interface {
	// Text returns the combined text content of the element and its descendants.
	Text() string

	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)

	// HTML returns the inner HTML of the element.
	HTML() string
}

// Document is a parsed page queried with CSS selectors.
// An invalid selector matches nothing.
type Document interface {
	// Find returns every element matching selector in document order.
	Find(selector string) []Node

	// Count returns the number of elements matching selector.
	Count(selector string) int

	// First returns the first element matching selector.
	First(selector string) (Node, bool)
}

// Parse builds a Document from raw HTML.
func Parse(html string) Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return empty{}
	}
	return &queryDocument{doc: doc}
}

type queryDocument struct {
	doc *goquery.Document
}

func (d *queryDocument) Find(selector string) []Node {
	sel := d.doc.Find(selector)
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &queryNode{sel: s})
	})
	return nodes
}

func (d *queryDocument) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

func (d *queryDocument) First(selector string) (Node, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &queryNode{sel: sel}, true
}

type queryNode struct {
	sel *goquery.Selection
}

func (n *queryNode) Text() string {
	return n.sel.Text()
}

func (n *queryNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *queryNode) HTML() string {
	h, err := n.sel.Html()
	if err != nil {
		return ""
	}
	return h
}

// empty is the document of unparsable input.
type empty struct{}

func (empty) Find(string) []Node { return nil }

func (empty) Count(string) int { return 0 }

func (empty) First(string) (Node, bool) { return nil, false }
