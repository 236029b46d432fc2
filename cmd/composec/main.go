// Command composec compiles a compose-sequence file (or a locale's
// default one) and either reports on it, dumps it back to
// compose-file text, or drives an interactive terminal REPL that
// feeds real keypresses through a composeseq.State.
//
// Grounded on examples/main.go's load-iterate-print CLI scaffold for
// the report/dump paths, and on
// sqldef-sqldef/cmd/mysqldef/mysqldef.go's go-flags option struct +
// golang.org/x/term raw-mode usage for the REPL (there used for a
// password prompt via term.ReadPassword; here generalized to
// term.MakeRaw plus byte-at-a-time reads, since both are "read the
// terminal without line buffering").
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/oarkflow/composeseq"
	"github.com/oarkflow/composeseq/diag"
	"github.com/oarkflow/composeseq/keysym"
)

type cliOptions struct {
	File       string `short:"f" long:"file" description:"Compose file to compile" value-name:"path"`
	Locale     string `short:"l" long:"locale" description:"Locale to resolve (ignored if --file is given)" value-name:"locale" default:"C"`
	Dump       bool   `long:"dump" description:"Print the compiled table back as compose-file text"`
	Report     string `long:"report" description:"Diagnostics report format: text or yaml" choice:"text" choice:"yaml" default:"text"`
	DebugTrie  bool   `long:"debug-trie" description:"Pretty-print the raw trie node count and locale"`
	Repl       bool   `long:"repl" description:"Drive an interactive compose session from the terminal"`
	Help       bool   `long:"help" description:"Show this help"`
}

func main() {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		fatal("parse arguments", err)
	}
	if opts.Help {
		parser.WriteHelp(os.Stdout)
		return
	}

	log := &diag.CollectingLogger{}
	table, err := compile(opts, log)
	printReport(opts.Report, log)
	if err != nil {
		fatal("compile", err)
	}

	if opts.DebugTrie {
		pp.Println(map[string]any{
			"locale":      table.Locale(),
			"nodes":       table.NodeCount(),
			"diagnostics": len(log.Diagnostics),
		})
	}

	if opts.Dump {
		fmt.Print(table.Dump(keysym.Default()))
	}

	if opts.Repl {
		if err := runRepl(table); err != nil {
			fatal("repl", err)
		}
	}
}

func compile(opts cliOptions, log diag.Logger) (*composeseq.Table, error) {
	if opts.File != "" {
		return composeseq.FromFile(opts.File, opts.Locale, composeseq.WithLogger(log))
	}
	return composeseq.FromLocale(opts.Locale, composeseq.WithLogger(log))
}

func printReport(format string, log *diag.CollectingLogger) {
	if len(log.Diagnostics) == 0 {
		return
	}
	switch format {
	case "yaml":
		out, err := yaml.Marshal(log.Diagnostics)
		if err != nil {
			fatal("marshal report", err)
		}
		fmt.Fprint(os.Stderr, string(out))
	default:
		for _, d := range log.Diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
}

// runRepl puts the terminal in raw mode and feeds each byte the user
// types as a (trivially, byte-valued) key symbol through a fresh
// composeseq.State, printing the committed result as it lands.
func runRepl(table *composeseq.Table) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("putting terminal in raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Print("composec REPL — type keys, Ctrl-D to quit\r\n")
	st := composeseq.NewState(table)
	buf := make([]byte, 1)
	out := make([]byte, 64)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return nil
		}
		b := buf[0]
		if b == 4 { // Ctrl-D
			return nil
		}
		res := st.Feed(keysym.Keysym(b))
		if res == composeseq.Ignored {
			continue
		}
		switch st.Status() {
		case composeseq.Composed:
			m := st.UTF8(out)
			fmt.Printf("\r\nCOMPOSED: %q (sym=%v)\r\n", out[:m], st.OneSym())
		case composeseq.Cancelled:
			fmt.Print("\r\nCANCELLED\r\n")
		case composeseq.Composing:
			fmt.Print(".")
		}
	}
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", step, err)
	os.Exit(1)
}
