package xpath

import (
	"math"
	"strings"

	xqerrors "github.com/jacoelho/xq/errors"
	"github.com/jacoelho/xq/internal/dom"
)

// coreFunctions is the XPath 1.0 core library with its arities; a
// maxArgs of -1 means variadic. Arity is checked at parse time so a bad
// call is an ErrXPathSyntax, not a runtime surprise.
var coreFunctions = map[string]struct {
	minArgs int
	maxArgs int
}{
	"last":             {0, 0},
	"position":         {0, 0},
	"count":            {1, 1},
	"id":               {1, 1},
	"local-name":       {0, 1},
	"namespace-uri":    {0, 1},
	"name":             {0, 1},
	"string":           {0, 1},
	"concat":           {2, -1},
	"starts-with":      {2, 2},
	"contains":         {2, 2},
	"substring-before": {2, 2},
	"substring-after":  {2, 2},
	"substring":        {2, 3},
	"string-length":    {0, 1},
	"normalize-space":  {0, 1},
	"translate":        {3, 3},
	"boolean":          {1, 1},
	"not":              {1, 1},
	"true":             {0, 0},
	"false":            {0, 0},
	"lang":             {1, 1},
	"number":           {0, 1},
	"sum":              {1, 1},
	"floor":            {1, 1},
	"ceiling":          {1, 1},
	"round":            {1, 1},
}

func evalFunc(ctx Context, call *FuncCall) (Value, error) {
	args := make([]Value, len(call.Args))
	for i, argExpr := range call.Args {
		v, err := eval(ctx, argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	d := ctx.Doc

	switch call.Name {
	case "last":
		return Number(ctx.Size), nil
	case "position":
		return Number(ctx.Position), nil
	case "count":
		set, err := argNodeSet(call.Name, args[0])
		if err != nil {
			return nil, err
		}
		return Number(len(set)), nil
	case "id":
		return funcID(ctx, args[0]), nil
	case "local-name":
		n, ok := nameArgNode(ctx, args)
		if !ok {
			return String(""), nil
		}
		return String(nodeLocalName(d, n)), nil
	case "namespace-uri":
		n, ok := nameArgNode(ctx, args)
		if !ok {
			return String(""), nil
		}
		return String(d.Namespace(n)), nil
	case "name":
		n, ok := nameArgNode(ctx, args)
		if !ok {
			return String(""), nil
		}
		return String(d.Name(n)), nil
	case "string":
		if len(args) == 0 {
			return String(d.StringValue(ctx.Node)), nil
		}
		return ToString(d, args[0]), nil
	case "concat":
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(string(ToString(d, a)))
		}
		return String(sb.String()), nil
	case "starts-with":
		return Boolean(strings.HasPrefix(
			string(ToString(d, args[0])), string(ToString(d, args[1])))), nil
	case "contains":
		return Boolean(strings.Contains(
			string(ToString(d, args[0])), string(ToString(d, args[1])))), nil
	case "substring-before":
		s, sep := string(ToString(d, args[0])), string(ToString(d, args[1]))
		before, _, found := strings.Cut(s, sep)
		if !found {
			return String(""), nil
		}
		return String(before), nil
	case "substring-after":
		s, sep := string(ToString(d, args[0])), string(ToString(d, args[1]))
		_, after, found := strings.Cut(s, sep)
		if !found {
			return String(""), nil
		}
		return String(after), nil
	case "substring":
		return funcSubstring(d, args), nil
	case "string-length":
		s := contextOrArgString(ctx, args)
		return Number(len([]rune(s))), nil
	case "normalize-space":
		return String(normalizeSpace(contextOrArgString(ctx, args))), nil
	case "translate":
		return String(translate(
			string(ToString(d, args[0])),
			string(ToString(d, args[1])),
			string(ToString(d, args[2])))), nil
	case "boolean":
		return ToBoolean(args[0]), nil
	case "not":
		return !ToBoolean(args[0]), nil
	case "true":
		return Boolean(true), nil
	case "false":
		return Boolean(false), nil
	case "lang":
		return funcLang(ctx, string(ToString(d, args[0]))), nil
	case "number":
		if len(args) == 0 {
			return ToNumber(d, String(d.StringValue(ctx.Node))), nil
		}
		return ToNumber(d, args[0]), nil
	case "sum":
		set, err := argNodeSet(call.Name, args[0])
		if err != nil {
			return nil, err
		}
		total := 0.0
		for _, n := range set {
			total += float64(ToNumber(d, String(d.StringValue(n))))
		}
		return Number(total), nil
	case "floor":
		return Number(math.Floor(float64(ToNumber(d, args[0])))), nil
	case "ceiling":
		return Number(math.Ceil(float64(ToNumber(d, args[0])))), nil
	case "round":
		return Number(round(float64(ToNumber(d, args[0])))), nil
	default:
		return nil, xqerrors.Newf(xqerrors.ErrEvalType, "unknown function %q", call.Name)
	}
}

func argNodeSet(fn string, v Value) (NodeSet, error) {
	set, ok := v.(NodeSet)
	if !ok {
		return nil, xqerrors.Newf(xqerrors.ErrEvalType, "%s() requires a node-set argument, got %s", fn, KindOf(v))
	}
	return set, nil
}

// nameArgNode picks the node the name family of functions operates on:
// the first node of the argument node-set in document order, or the
// context node when no argument was given.
func nameArgNode(ctx Context, args []Value) (dom.NodeID, bool) {
	if len(args) == 0 {
		return ctx.Node, true
	}
	set, ok := args[0].(NodeSet)
	if !ok || len(set) == 0 {
		return dom.InvalidNode, false
	}
	return sortUnique(ctx.Doc, append(NodeSet(nil), set...))[0], true
}

func nodeLocalName(d *dom.Document, n dom.NodeID) string {
	switch d.Kind(n) {
	case dom.KindNamespace:
		return d.Prefix(n)
	default:
		return d.LocalName(n)
	}
}

func contextOrArgString(ctx Context, args []Value) string {
	if len(args) == 0 {
		return ctx.Doc.StringValue(ctx.Node)
	}
	return string(ToString(ctx.Doc, args[0]))
}

// funcID resolves ID references against attributes literally named id.
// A node-set argument contributes the string-value of every node; any
// string splits on whitespace into individual tokens.
func funcID(ctx Context, arg Value) NodeSet {
	tokens := make(map[string]struct{})
	add := func(s string) {
		for _, tok := range strings.Fields(s) {
			tokens[tok] = struct{}{}
		}
	}
	if set, ok := arg.(NodeSet); ok {
		for _, n := range set {
			add(ctx.Doc.StringValue(n))
		}
	} else {
		add(string(ToString(ctx.Doc, arg)))
	}
	if len(tokens) == 0 {
		return NodeSet{}
	}

	var out NodeSet
	var walk func(n dom.NodeID)
	walk = func(n dom.NodeID) {
		for _, child := range ctx.Doc.Children(n) {
			if ctx.Doc.Kind(child) == dom.KindElement {
				for _, attr := range ctx.Doc.Attributes(child) {
					if ctx.Doc.Namespace(attr) == "" && ctx.Doc.LocalName(attr) == "id" {
						if _, want := tokens[ctx.Doc.Value(attr)]; want {
							out = append(out, child)
						}
						break
					}
				}
			}
			walk(child)
		}
	}
	walk(dom.DocumentRoot)
	return sortUnique(ctx.Doc, out)
}

// funcSubstring implements substring() with XPath's rounding rules:
// positions are 1-based, boundaries are computed with round(), and NaN
// boundaries select nothing.
func funcSubstring(d *dom.Document, args []Value) String {
	runes := []rune(string(ToString(d, args[0])))
	start := round(float64(ToNumber(d, args[1])))
	end := math.Inf(1)
	if len(args) == 3 {
		length := float64(ToNumber(d, args[2]))
		end = start + round(length)
	}
	if math.IsNaN(start) || math.IsNaN(end) {
		return ""
	}

	var sb strings.Builder
	for i, r := range runes {
		pos := float64(i + 1)
		if pos >= start && pos < end {
			sb.WriteRune(r)
		}
	}
	return String(sb.String())
}

// round implements XPath round(): half values round toward positive
// infinity, and NaN and infinities pass through.
func round(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.Floor(f + 0.5)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func translate(s, from, to string) string {
	fromRunes := []rune(from)
	toRunes := []rune(to)
	mapping := make(map[rune]rune, len(fromRunes))
	remove := make(map[rune]struct{})
	for i, r := range fromRunes {
		if _, dup := mapping[r]; dup {
			continue
		}
		if _, gone := remove[r]; gone {
			continue
		}
		if i < len(toRunes) {
			mapping[r] = toRunes[i]
		} else {
			remove[r] = struct{}{}
		}
	}

	var sb strings.Builder
	for _, r := range s {
		if _, gone := remove[r]; gone {
			continue
		}
		if mapped, ok := mapping[r]; ok {
			sb.WriteRune(mapped)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// funcLang tests the xml:lang in scope at the context node against a
// target language, case-insensitively, allowing a sublanguage suffix.
func funcLang(ctx Context, target string) Boolean {
	for n := ctx.Node; n != dom.InvalidNode; n = ctx.Doc.Parent(n) {
		if ctx.Doc.Kind(n) != dom.KindElement {
			continue
		}
		for _, attr := range ctx.Doc.Attributes(n) {
			if ctx.Doc.Namespace(attr) == dom.XMLNamespace && ctx.Doc.LocalName(attr) == "lang" {
				have := strings.ToLower(ctx.Doc.Value(attr))
				want := strings.ToLower(target)
				return Boolean(have == want || strings.HasPrefix(have, want+"-"))
			}
		}
	}
	return false
}
