// Package xq provides an XML document model and an XPath 1.0 engine
// for querying and editing documents while preserving their original
// markup, prefixes, and whitespace.
package xq

import (
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/xq/internal/dom"
	"github.com/jacoelho/xq/internal/xpath"
)

// Namespaces binds XPath step prefixes to namespace URIs. The empty
// prefix binds the default namespace used by unprefixed element tests.
type Namespaces map[string]string

// Document is a parsed XML document.
type Document struct {
	doc *dom.Document
}

// Parse reads and parses an XML document.
func Parse(r io.Reader) (*Document, error) {
	d, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: d}, nil
}

// ParseBytes parses an XML document held in memory.
func ParseBytes(src []byte) (*Document, error) {
	d, err := dom.ParseBytes(src)
	if err != nil {
		return nil, err
	}
	return &Document{doc: d}, nil
}

// ParseFile parses the XML document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Serialize writes the whole document to w, reproducing the original
// markup except where it has been edited.
func (d *Document) Serialize(w io.Writer) error {
	return d.doc.WriteDocument(w)
}

// Expr is a compiled XPath expression. It is immutable and safe for
// concurrent use against any number of documents.
type Expr struct {
	expr xpath.Expr
}

// Compile parses an XPath 1.0 expression. Prefixes used in the
// expression are resolved against ns at compile time; an unbound
// prefix is a compile error.
func Compile(expr string, ns Namespaces) (*Expr, error) {
	parsed, err := xpath.Parse(expr, ns)
	if err != nil {
		return nil, err
	}
	return &Expr{expr: parsed}, nil
}

// Evaluate runs the expression against the document root and returns
// the typed result.
func (e *Expr) Evaluate(d *Document) (*Result, error) {
	v, err := xpath.Evaluate(d.doc, e.expr)
	if err != nil {
		return nil, err
	}
	return &Result{doc: d.doc, value: v}, nil
}

// Query compiles and evaluates an expression in one step.
func (d *Document) Query(expr string, ns Namespaces) (*Result, error) {
	compiled, err := Compile(expr, ns)
	if err != nil {
		return nil, err
	}
	return compiled.Evaluate(d)
}

// Result is the outcome of evaluating an expression: a node-set,
// boolean, number, or string.
type Result struct {
	doc   *dom.Document
	value xpath.Value
}

// Kind reports the result type as "node-set", "boolean", "number", or
// "string".
func (r *Result) Kind() string {
	return xpath.KindOf(r.value)
}

// IsNodeSet reports whether the result is a node-set.
func (r *Result) IsNodeSet() bool {
	_, ok := r.value.(xpath.NodeSet)
	return ok
}

// Len returns the number of nodes in a node-set result, and 0 for any
// other result kind.
func (r *Result) Len() int {
	set, ok := r.value.(xpath.NodeSet)
	if !ok {
		return 0
	}
	return len(set)
}

// Bool returns the result coerced to a boolean.
func (r *Result) Bool() bool {
	return bool(xpath.ToBoolean(r.value))
}

// Num returns the result coerced to a number.
func (r *Result) Num() float64 {
	return float64(xpath.ToNumber(r.doc, r.value))
}

// Str returns the result coerced to a string.
func (r *Result) Str() string {
	return string(xpath.ToString(r.doc, r.value))
}

// Serialize prints the result one item per line. Elements, comments, and
// processing instructions are serialized as markup; attribute, text,
// and namespace nodes print their value. Booleans print as true or
// false, numbers in canonical XPath form, strings verbatim.
func (r *Result) Serialize(w io.Writer) error {
	set, ok := r.value.(xpath.NodeSet)
	if !ok {
		_, err := fmt.Fprintln(w, r.Str())
		return err
	}
	for _, n := range set {
		if err := r.doc.WriteNode(w, n); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
