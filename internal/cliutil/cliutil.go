// Package cliutil holds the flag plumbing shared by the query and edit
// commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/xq"
)

// ParseNamespaces turns repeated --setns arguments into a prefix
// table. Each binding must look like xmlns=uri or xmlns:prefix=uri,
// the same syntax a document would use to declare it.
func ParseNamespaces(bindings []string) (xq.Namespaces, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	ns := make(xq.Namespaces, len(bindings))
	for _, binding := range bindings {
		decl, uri, found := strings.Cut(binding, "=")
		if !found {
			return nil, fmt.Errorf("invalid namespace binding %q: expected xmlns:prefix=uri", binding)
		}
		switch {
		case decl == "xmlns":
			ns[""] = uri
		case strings.HasPrefix(decl, "xmlns:") && len(decl) > len("xmlns:"):
			ns[decl[len("xmlns:"):]] = uri
		default:
			return nil, fmt.Errorf("invalid namespace binding %q: expected xmlns:prefix=uri", binding)
		}
	}
	return ns, nil
}

// LoadDocument parses the file at path, or stdin when path is empty
// or "-".
func LoadDocument(path string, stdin io.Reader) (*xq.Document, error) {
	if path == "" || path == "-" {
		doc, err := xq.Parse(stdin)
		if err != nil {
			return nil, fmt.Errorf("parse stdin: %w", err)
		}
		return doc, nil
	}
	return xq.ParseFile(path)
}

// Stdin returns os.Stdin; commands take it as a parameter so tests can
// substitute a buffer.
func Stdin() io.Reader {
	return os.Stdin
}
