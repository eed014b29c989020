package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/obelisk/compiler"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/parser"
	"github.com/teranos/obelisk/sym"
)

// FormatError renders an error returned by a command for the terminal.
// Rejected statements were already printed one by one, so a compile
// failure is summarised.
func FormatError(err error) string {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return pterm.Red(fmt.Sprintf("%d statement(s) rejected", len(compileErr.Errors)))
	}

	msg := pterm.Red("Error: ") + err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		msg += "\n" + pterm.Yellow("Hint: ") + hints
	}
	return msg
}

// printStatementErrors writes every rejected statement to w
func printStatementErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintln(w, parseErr.FormatError(parser.ErrorContextTerminal))
		} else {
			fmt.Fprintln(w, pterm.Red(err.Error()))
		}
		fmt.Fprintln(w)
	}
}

// printResult writes a one-line summary of a compile run to w
func printResult(w io.Writer, res *compiler.Result, kbPath string) {
	parts := []string{
		fmt.Sprintf("%d %s", res.Facts, plural(res.Facts, "fact", "facts")),
		fmt.Sprintf("%d %s", res.Rules, plural(res.Rules, "rule", "rules")),
		fmt.Sprintf("%d %s", res.Actions, plural(res.Actions, "action", "actions")),
	}
	line := fmt.Sprintf("%s %s from %d %s into %s",
		sym.Done, strings.Join(parts, ", "), res.Files, plural(res.Files, "file", "files"), kbPath)
	if res.Promoted > 0 {
		line += fmt.Sprintf(", %d promoted by rules", res.Promoted)
	}
	if failed := res.Failed(); failed > 0 {
		line += pterm.Red(fmt.Sprintf(", %d rejected", failed))
	}
	fmt.Fprintln(w, line)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format JSON")
	}
	fmt.Fprintln(w, string(data))
	return nil
}
