package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args []string, stdin string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut strings.Builder
	code = runWithArgs(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestQueryFromStdin(t *testing.T) {
	code, stdout, stderr := run(t, []string{"--xpath", "root/e/text()"}, `<root><e>text</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "text\n", stdout)
	assert.Empty(t, stderr)
}

func TestQueryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<r><e>a</e><e>b</e></r>`), 0o644))

	code, stdout, _ := run(t, []string{"-x", "//e", path}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<e>a</e>\n<e>b</e>\n", stdout)
}

func TestQueryWithNamespaceBinding(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"--xpath", "root/i:e", "--setns", "xmlns:i=http://abc"},
		`<root xmlns:abc='http://abc'><abc:e>text</abc:e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "<abc:e>text</abc:e>\n", stdout)
}

func TestQueryWithDefaultNamespaceBinding(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"--xpath", "//e", "--setns", "xmlns=http://abc"},
		`<root xmlns="http://abc"><e>text</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "<e>text</e>\n", stdout)
}

func TestQueryMissingXPathFlag(t *testing.T) {
	code, stdout, stderr := run(t, nil, `<r/>`)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.NotEmpty(t, stderr)
}

func TestQueryInvalidNamespaceBinding(t *testing.T) {
	for _, binding := range []string{"i=http://abc", "xmlns:=http://abc", "nonsense"} {
		code, stdout, stderr := run(t, []string{"-x", "//e", "-n", binding}, `<r/>`)
		assert.Equal(t, 2, code, "binding %q", binding)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "invalid namespace binding")
	}
}

func TestQueryBadExpression(t *testing.T) {
	code, stdout, stderr := run(t, []string{"-x", "//e["}, `<r/>`)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "xpath-syntax")
}

func TestQueryMalformedDocument(t *testing.T) {
	code, stdout, stderr := run(t, []string{"-x", "//e"}, `<r><broken></r>`)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "malformed-xml")
}

func TestQueryMissingFile(t *testing.T) {
	code, _, stderr := run(t, []string{"-x", "//e", filepath.Join(t.TempDir(), "absent.xml")}, "")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}
