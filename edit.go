package xq

import (
	xqerrors "github.com/jacoelho/xq/errors"
	"github.com/jacoelho/xq/internal/dom"
	"github.com/jacoelho/xq/internal/xpath"
)

// Replacement is a replacement value prepared for editing. The value
// is parsed as an XML fragment once; when it is not well-formed markup
// it is applied as literal text instead.
type Replacement struct {
	raw      string
	fragDoc  *dom.Document
	fragment []dom.NodeID
}

// NewReplacement parses value up front so it can be applied to any
// number of nodes.
func NewReplacement(value string) *Replacement {
	r := &Replacement{raw: value}
	if nodes, doc, err := dom.ParseFragment(value); err == nil {
		r.fragDoc = doc
		r.fragment = nodes
	}
	return r
}

// Replace evaluates expr against the document and replaces the content
// of every selected node with value. Elements get their children
// replaced by the fragment, attributes and text nodes get the raw
// value. Selecting nothing is not an error; a result that is not a
// node-set is.
func (d *Document) Replace(expr string, ns Namespaces, value string) error {
	compiled, err := Compile(expr, ns)
	if err != nil {
		return err
	}
	return d.ReplaceAll(compiled, NewReplacement(value))
}

// ReplaceAll applies a prepared replacement to every node selected by
// a compiled expression.
func (d *Document) ReplaceAll(expr *Expr, value *Replacement) error {
	result, err := expr.Evaluate(d)
	if err != nil {
		return err
	}
	set, ok := result.value.(xpath.NodeSet)
	if !ok {
		return xqerrors.Newf(xqerrors.ErrEvalType,
			"edit requires a node-set, expression evaluated to a %s", result.Kind())
	}

	for _, n := range set {
		d.replaceNode(n, value)
	}
	return nil
}

func (d *Document) replaceNode(n dom.NodeID, value *Replacement) {
	switch d.doc.Kind(n) {
	case dom.KindElement:
		if value.fragDoc != nil {
			d.doc.ReplaceContent(n, value.fragDoc, value.fragment)
		} else {
			d.doc.ReplaceText(n, value.raw)
		}
	case dom.KindAttribute:
		d.doc.SetAttributeValue(n, value.raw)
	case dom.KindText:
		d.doc.SetTextValue(n, value.raw)
	case dom.KindDocument:
		// Replacing the root is replacing the document element's
		// content when there is exactly one.
		for _, child := range d.doc.Children(n) {
			if d.doc.Kind(child) == dom.KindElement {
				d.replaceNode(child, value)
			}
		}
	}
}
