// Command xq evaluates an XPath 1.0 expression against an XML document
// and prints the result, one node per line for node-sets.
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
	XPath string   `short:"x" long:"xpath" required:"true" description:"XPath expression to evaluate"`
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
	parser.Name = "xq"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			parser.WriteHelp(stdout)
			return 0
		}
		fmt.Fprintln(stderr, "xq:", err)
		return 2
	}

	ns, err := cliutil.ParseNamespaces(opts.SetNS)
	if err != nil {
		fmt.Fprintln(stderr, "xq:", err)
		return 2
	}

	expr, err := xq.Compile(opts.XPath, ns)
	if err != nil {
		fmt.Fprintln(stderr, "xq:", err)
		return 1
	}

	doc, err := cliutil.LoadDocument(opts.Args.File, stdin)
	if err != nil {
		fmt.Fprintln(stderr, "xq:", err)
		return 1
	}

	result, err := expr.Evaluate(doc)
	if err != nil {
		fmt.Fprintln(stderr, "xq:", err)
		return 1
	}
	if err := result.Serialize(stdout); err != nil {
		fmt.Fprintln(stderr, "xq:", err)
		return 1
	}
	return 0
}
