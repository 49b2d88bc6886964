package xpath

import (
	"math"
	"slices"

	xqerrors "github.com/jacoelho/xq/errors"
	"github.com/jacoelho/xq/internal/dom"
)

// Context is the evaluation context of a sub-expression: the current
// node, its 1-based proximity position, and the size of the node list
// being iterated.
type Context struct {
	Doc      *dom.Document
	Node     dom.NodeID
	Position int
	Size     int
}

// Evaluate evaluates a compiled expression with the document root as the
// context node.
func Evaluate(d *dom.Document, expr Expr) (Value, error) {
	ctx := Context{Doc: d, Node: dom.DocumentRoot, Position: 1, Size: 1}
	return eval(ctx, expr)
}

func eval(ctx Context, expr Expr) (Value, error) {
	switch e := expr.(type) {
	case *NumberLit:
		return Number(e.Value), nil
	case *StringLit:
		return String(e.Value), nil
	case *VarRef:
		return nil, xqerrors.Newf(xqerrors.ErrEvalType, "variable $%s is not bound (the engine has no variable bindings)", e.Name)
	case *NegExpr:
		v, err := eval(ctx, e.X)
		if err != nil {
			return nil, err
		}
		return -ToNumber(ctx.Doc, v), nil
	case *BinaryExpr:
		return evalBinary(ctx, e)
	case *FuncCall:
		return evalFunc(ctx, e)
	case *FilterExpr:
		return evalFilter(ctx, e)
	case *PathExpr:
		return evalPath(ctx, e)
	default:
		return nil, xqerrors.Newf(xqerrors.ErrEvalType, "unsupported expression")
	}
}

func evalBinary(ctx Context, e *BinaryExpr) (Value, error) {
	switch e.Op {
	case OpOr, OpAnd:
		left, err := eval(ctx, e.Left)
		if err != nil {
			return nil, err
		}
		lb := bool(ToBoolean(left))
		if (e.Op == OpOr && lb) || (e.Op == OpAnd && !lb) {
			return Boolean(lb), nil
		}
		right, err := eval(ctx, e.Right)
		if err != nil {
			return nil, err
		}
		return ToBoolean(right), nil
	}

	left, err := eval(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := eval(ctx, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case OpUnion:
		return evalUnion(ctx, left, right)
	case OpEq, OpNeq, OpLt, OpLe, OpGt, OpGe:
		return compare(ctx.Doc, e.Op, left, right), nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		a := float64(ToNumber(ctx.Doc, left))
		b := float64(ToNumber(ctx.Doc, right))
		switch e.Op {
		case OpAdd:
			return Number(a + b), nil
		case OpSub:
			return Number(a - b), nil
		case OpMul:
			return Number(a * b), nil
		case OpDiv:
			return Number(a / b), nil
		default:
			return Number(math.Mod(a, b)), nil
		}
	default:
		return nil, xqerrors.Newf(xqerrors.ErrEvalType, "unsupported operator %s", e.Op)
	}
}

func evalUnion(ctx Context, left, right Value) (Value, error) {
	ls, lok := left.(NodeSet)
	rs, rok := right.(NodeSet)
	if !lok || !rok {
		return nil, xqerrors.Newf(xqerrors.ErrEvalType,
			"operands of | must be node-sets, got %s and %s", KindOf(left), KindOf(right))
	}
	merged := append(append(NodeSet{}, ls...), rs...)
	return sortUnique(ctx.Doc, merged), nil
}

// sortUnique places a node-set into document order and removes
// duplicates by node identity.
func sortUnique(d *dom.Document, set NodeSet) NodeSet {
	slices.SortFunc(set, d.CompareOrder)
	return slices.Compact(set)
}

// compare implements the XPath comparison rules: comparisons involving
// a node-set hold when some member satisfies them; otherwise equality
// compares as booleans, numbers, or strings depending on the operand
// types, and relational operators always compare as numbers.
func compare(d *dom.Document, op Operator, left, right Value) Boolean {
	ls, lok := left.(NodeSet)
	rs, rok := right.(NodeSet)

	switch {
	case lok && rok:
		for _, ln := range ls {
			lv := String(d.StringValue(ln))
			for _, rn := range rs {
				if comparePrimitive(d, op, lv, String(d.StringValue(rn))) {
					return true
				}
			}
		}
		return false
	case lok:
		if _, isBool := right.(Boolean); isBool {
			return Boolean(comparePrimitive(d, op, ToBoolean(left), right))
		}
		for _, ln := range ls {
			if comparePrimitive(d, op, String(d.StringValue(ln)), right) {
				return true
			}
		}
		return false
	case rok:
		if _, isBool := left.(Boolean); isBool {
			return Boolean(comparePrimitive(d, op, left, ToBoolean(right)))
		}
		for _, rn := range rs {
			if comparePrimitive(d, op, left, String(d.StringValue(rn))) {
				return true
			}
		}
		return false
	default:
		return Boolean(comparePrimitive(d, op, left, right))
	}
}

func comparePrimitive(d *dom.Document, op Operator, left, right Value) bool {
	switch op {
	case OpEq, OpNeq:
		equal := primitiveEqual(d, left, right)
		if op == OpNeq {
			return !equal
		}
		return equal
	default:
		a := float64(ToNumber(d, left))
		b := float64(ToNumber(d, right))
		switch op {
		case OpLt:
			return a < b
		case OpLe:
			return a <= b
		case OpGt:
			return a > b
		case OpGe:
			return a >= b
		default:
			return false
		}
	}
}

func primitiveEqual(d *dom.Document, left, right Value) bool {
	_, lb := left.(Boolean)
	_, rb := right.(Boolean)
	if lb || rb {
		return ToBoolean(left) == ToBoolean(right)
	}
	_, ln := left.(Number)
	_, rn := right.(Number)
	if ln || rn {
		return float64(ToNumber(d, left)) == float64(ToNumber(d, right))
	}
	return ToString(d, left) == ToString(d, right)
}

// evalFilter evaluates a primary expression and narrows the resulting
// node-set with predicates; proximity positions follow document order.
func evalFilter(ctx Context, e *FilterExpr) (Value, error) {
	primary, err := eval(ctx, e.Primary)
	if err != nil {
		return nil, err
	}
	set, ok := primary.(NodeSet)
	if !ok {
		return nil, xqerrors.Newf(xqerrors.ErrEvalType,
			"predicate applied to %s, need node-set", KindOf(primary))
	}
	set = sortUnique(ctx.Doc, set)
	for _, pred := range e.Predicates {
		set, err = applyPredicate(ctx.Doc, set, pred)
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

func evalPath(ctx Context, e *PathExpr) (Value, error) {
	var input NodeSet
	switch {
	case e.Input != nil:
		v, err := eval(ctx, e.Input)
		if err != nil {
			return nil, err
		}
		set, ok := v.(NodeSet)
		if !ok {
			return nil, xqerrors.Newf(xqerrors.ErrEvalType,
				"location step applied to %s, need node-set", KindOf(v))
		}
		input = sortUnique(ctx.Doc, set)
	case e.Absolute:
		input = NodeSet{dom.DocumentRoot}
	default:
		input = NodeSet{ctx.Node}
	}

	for _, step := range e.Steps {
		next, err := applyStep(ctx.Doc, input, step)
		if err != nil {
			return nil, err
		}
		input = next
	}

	// Intermediate steps keep axis order for positional predicates; the
	// overall path result is canonical: document order, no duplicates.
	return sortUnique(ctx.Doc, input), nil
}

// applyStep maps a step over every input node. Each input node's
// candidates come back in axis order, the node test and predicates
// narrow them with per-node position/size context, and the surviving
// nodes are concatenated with duplicates removed (first occurrence wins,
// preserving step order for the next step's positional predicates).
func applyStep(d *dom.Document, input NodeSet, step *Step) (NodeSet, error) {
	var out NodeSet
	seen := make(map[dom.NodeID]struct{})
	for _, n := range input {
		candidates := axisNodes(d, n, step.Axis)
		matched := candidates[:0:0]
		for _, c := range candidates {
			if matchTest(d, c, step.Axis, step.Test) {
				matched = append(matched, c)
			}
		}
		var err error
		for _, pred := range step.Predicates {
			matched, err = applyPredicate(d, matched, pred)
			if err != nil {
				return nil, err
			}
		}
		for _, c := range matched {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// applyPredicate filters candidates, evaluating the predicate once per
// node with position and size bound for this list. The candidate list
// is in axis order, so positions are simply 1..len; reverse axes have
// already produced their reverse-document-order list. A numeric
// predicate result tests equality with the position; anything else
// converts to boolean.
func applyPredicate(d *dom.Document, candidates NodeSet, pred Expr) (NodeSet, error) {
	var kept NodeSet
	size := len(candidates)
	for i, c := range candidates {
		ctx := Context{Doc: d, Node: c, Position: i + 1, Size: size}
		v, err := eval(ctx, pred)
		if err != nil {
			return nil, err
		}
		if num, ok := v.(Number); ok {
			if float64(num) == float64(i+1) {
				kept = append(kept, c)
			}
			continue
		}
		if ToBoolean(v) {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
