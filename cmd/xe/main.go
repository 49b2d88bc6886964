// Command xe edits an XML document in place of its stream: it selects
// nodes with an XPath 1.0 expression, replaces their content with a
// new value, and writes the whole document back out.
package main

import (
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/jacoelho/xq"
	"github.com/jacoelho/xq/internal/cliutil"
)

type options struct {
	XPath string   `short:"x" long:"xpath" required:"true" description:"XPath expression selecting the nodes to edit"`
	Value string   `short:"v" long:"value" required:"true" description:"replacement content, parsed as an XML fragment when well-formed"`
	SetNS []string `short:"n" long:"setns" value-name:"xmlns:prefix=uri" description:"bind a namespace prefix for use in the expression"`
	Args  struct {
		File string `positional-arg-name:"file"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(runWithArgs(os.Args[1:], cliutil.Stdin(), os.Stdout, os.Stderr))
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "xe"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			parser.WriteHelp(stdout)
			return 0
		}
		fmt.Fprintln(stderr, "xe:", err)
		return 2
	}

	ns, err := cliutil.ParseNamespaces(opts.SetNS)
	if err != nil {
		fmt.Fprintln(stderr, "xe:", err)
		return 2
	}

	expr, err := xq.Compile(opts.XPath, ns)
	if err != nil {
		fmt.Fprintln(stderr, "xe:", err)
		return 1
	}
	value := xq.NewReplacement(opts.Value)

	doc, err := cliutil.LoadDocument(opts.Args.File, stdin)
	if err != nil {
		fmt.Fprintln(stderr, "xe:", err)
		return 1
	}

	if err := doc.ReplaceAll(expr, value); err != nil {
		fmt.Fprintln(stderr, "xe:", err)
		return 1
	}
	if err := doc.Serialize(stdout); err != nil {
		fmt.Fprintln(stderr, "xe:", err)
		return 1
	}
	return 0
}
