package errors

import (
	goerrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code and message only",
			err:  New(ErrXPathSyntax, "unexpected token"),
			want: "[xpath-syntax] unexpected token",
		},
		{
			name: "with position",
			err:  NewAt(ErrMalformedXML, 3, 14, "unclosed element %q", "item"),
			want: `[malformed-xml] unclosed element "item" at line 3, column 14`,
		},
		{
			name: "with position and fragment",
			err:  NewAt(ErrMalformedXML, 1, 7, "expected attribute value").WithFragment("<a b>"),
			want: `[malformed-xml] expected attribute value at line 1, column 7 near "<a b>"`,
		},
		{
			name: "nil receiver",
			err:  nil,
			want: "diagnostic <nil>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithFragmentCopies(t *testing.T) {
	base := NewAt(ErrUnboundPrefix, 2, 5, "prefix %q is not bound", "p")
	annotated := base.WithFragment("p:item")

	if base.Fragment != "" {
		t.Errorf("WithFragment mutated the original: %q", base.Fragment)
	}
	if annotated.Fragment != "p:item" {
		t.Errorf("annotated fragment = %q, want %q", annotated.Fragment, "p:item")
	}
	if annotated.Line != 2 || annotated.Column != 5 {
		t.Errorf("annotated position = %d:%d, want 2:5", annotated.Line, annotated.Column)
	}
}

func TestAsErrorUnwraps(t *testing.T) {
	inner := New(ErrEvalType, "cannot convert boolean to node-set")
	wrapped := fmt.Errorf("evaluate: %w", inner)

	diag, ok := AsError(wrapped)
	if !ok {
		t.Fatal("AsError() failed to find the diagnostic")
	}
	if diag != inner {
		t.Errorf("AsError() = %p, want %p", diag, inner)
	}
	if got := CodeOf(wrapped); got != ErrEvalType {
		t.Errorf("CodeOf() = %q, want %q", got, ErrEvalType)
	}
}

func TestCodeOfNonDiagnostic(t *testing.T) {
	if got := CodeOf(goerrors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain error) = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}
