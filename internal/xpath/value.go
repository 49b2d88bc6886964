package xpath

import (
	"math"
	"strconv"
	"strings"

	"github.com/jacoelho/xq/internal/dom"
)

// Value is the tagged result union of an XPath evaluation: one of
// NodeSet, Boolean, Number, or String. The conversion functions below
// are total, implementing the XPath 1.0 coercion table; no pair of
// types lacks a defined conversion.
type Value interface {
	valueKind() string
}

// NodeSet is a duplicate-free set of node references. Evaluation keeps
// it in document order whenever it is the overall result of a path.
type NodeSet []dom.NodeID

// Boolean is an XPath boolean result.
type Boolean bool

// Number is an XPath number result (IEEE 754 double).
type Number float64

// String is an XPath string result.
type String string

func (NodeSet) valueKind() string { return "node-set" }
func (Boolean) valueKind() string { return "boolean" }
func (Number) valueKind() string  { return "number" }
func (String) valueKind() string  { return "string" }

// KindOf names a value's type the way XPath does.
func KindOf(v Value) string {
	if v == nil {
		return "node-set"
	}
	return v.valueKind()
}

// ToBoolean converts any value to a boolean: a node-set is true when
// non-empty, a number when neither zero nor NaN, a string when non-empty.
func ToBoolean(v Value) Boolean {
	switch t := v.(type) {
	case Boolean:
		return t
	case NodeSet:
		return len(t) > 0
	case Number:
		f := float64(t)
		return Boolean(f != 0 && !math.IsNaN(f))
	case String:
		return len(t) > 0
	default:
		return false
	}
}

// ToNumber converts any value to a number. A node-set converts through
// the string-value of its first node in document order; an unparseable
// string yields NaN.
func ToNumber(d *dom.Document, v Value) Number {
	switch t := v.(type) {
	case Number:
		return t
	case Boolean:
		if t {
			return 1
		}
		return 0
	case String:
		return Number(parseNumber(string(t)))
	case NodeSet:
		return ToNumber(d, String(ToString(d, t)))
	default:
		return Number(math.NaN())
	}
}

// ToString converts any value to a string. A node-set converts to the
// string-value of its first node in document order ("" when empty);
// numbers use the canonical XPath form.
func ToString(d *dom.Document, v Value) String {
	switch t := v.(type) {
	case String:
		return t
	case Boolean:
		if t {
			return "true"
		}
		return "false"
	case Number:
		return String(FormatNumber(float64(t)))
	case NodeSet:
		if len(t) == 0 {
			return ""
		}
		return String(d.StringValue(t[0]))
	default:
		return ""
	}
}

// FormatNumber renders a float in XPath's canonical string form: NaN,
// Infinity and -Infinity literals, integers without a decimal point, and
// plain decimal notation otherwise (never exponent notation).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Negative zero prints as 0.
		return "0"
	default:
		// 'f' never switches to exponent notation, which matches the
		// XPath canonical form for all magnitudes.
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// parseNumber implements the XPath number() lexical rule: optional
// whitespace, optional minus, digits with at most one decimal point.
// Everything else is NaN (no exponent or infinity literals).
func parseNumber(s string) float64 {
	trimmed := strings.Trim(s, " \t\r\n")
	if trimmed == "" {
		return math.NaN()
	}
	body := strings.TrimPrefix(trimmed, "-")
	if body == "" || !validNumberBody(body) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func validNumberBody(s string) bool {
	dot := false
	digits := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
