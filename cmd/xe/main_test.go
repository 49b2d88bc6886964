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

func TestEditElementText(t *testing.T) {
	code, stdout, stderr := run(t,
		[]string{"--xpath", "root/e", "--value", "text2"},
		`<root><e>text</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root><e>text2</e></root>`, stdout)
	assert.Empty(t, stderr)
}

func TestEditAttribute(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"-x", "root/e/@a", "-v", "c"},
		`<root><e a='b'>text</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root><e a="c">text</e></root>`, stdout)
}

func TestEditBroadcast(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"-x", "root/e", "-v", "1"},
		`<root><e>a</e><e>b</e><e>c</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root><e>1</e><e>1</e><e>1</e></root>`, stdout)
}

func TestEditWithFragmentValue(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"-x", "root/e", "-v", `<ee a="b">text</ee>`},
		`<root><e>text</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root><e><ee a="b">text</ee></e></root>`, stdout)
}

func TestEditFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<r><e>old</e></r>`), 0o644))

	code, stdout, _ := run(t, []string{"-x", "//e", "-v", "new", path}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, `<r><e>new</e></r>`, stdout)
}

func TestEditWithNamespaceBinding(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"-x", "root/i:e", "-v", "text2", "-n", "xmlns:i=http://abc"},
		`<root xmlns:abc='http://abc'><abc:e>text</abc:e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root xmlns:abc="http://abc"><abc:e>text2</abc:e></root>`, stdout)
}

func TestEditPreservesDeclarationAndComments(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"-x", "//e", "-v", "new"},
		`<?xml version="1.0"?><!-- keep --><root><e>old</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<?xml version="1.0"?><!-- keep --><root><e>new</e></root>`, stdout)
}

func TestEditRequiresValue(t *testing.T) {
	code, stdout, stderr := run(t, []string{"-x", "root/e"}, `<root><e>t</e></root>`)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.NotEmpty(t, stderr)
}

func TestEditRejectsScalarExpression(t *testing.T) {
	code, stdout, stderr := run(t,
		[]string{"-x", "count(//e)", "-v", "x"},
		`<root><e>t</e></root>`)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "node-set")
}

func TestEditNoMatchesStillPrintsDocument(t *testing.T) {
	code, stdout, stderr := run(t,
		[]string{"-x", "//missing", "-v", "x"},
		`<root><e>t</e></root>`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `<root><e>t</e></root>`, stdout)
	assert.Empty(t, stderr)
}
