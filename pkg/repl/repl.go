// Package repl is the interactive query loop: read a line, answer it
// against the index, print the result block, repeat until "exit".
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"docquery/internal/types"
)

const separator = "=========="

type Options struct {
	Prompt  string
	Spinner bool // show a spinner during retrieval; off in tests
}

// Run drives the query loop until the input ends or the user enters the
// literal line "exit" (case-sensitive). Query failures are reported and
// the loop continues; only I/O on the input itself ends it.
func Run(ctx context.Context, in io.Reader, out io.Writer, eng types.QueryEngine, opts Options) error {
	if opts.Prompt == "" {
		opts.Prompt = "Input query: "
	}

	errf := color.New(color.FgRed)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, opts.Prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if line == "exit" {
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var spinner *progressbar.ProgressBar
		if opts.Spinner {
			spinner = progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Searching index..."),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWidth(20),
				progressbar.OptionSetWriter(out),
			)
		}

		result, err := eng.Query(ctx, line)

		if spinner != nil {
			spinner.Finish()
			fmt.Fprint(out, "\r")
		}

		if err != nil {
			errf.Fprintf(out, "query failed: %v\n", err)
			continue
		}

		fmt.Fprintln(out, separator)
		fmt.Fprintln(out, "Query:")
		fmt.Fprintln(out, result.Query)
		fmt.Fprintln(out, "Answer:")

		for fragment := range result.Fragments {
			fmt.Fprint(out, fragment)
		}
		fmt.Fprintln(out)

		if err := <-result.Done; err != nil {
			errf.Fprintf(out, "answer stream failed: %v\n", err)
			continue
		}

		fmt.Fprintln(out, separator)
		fmt.Fprintln(out)

		if len(result.Nodes) == 0 {
			fmt.Fprintln(out, "(no matching source nodes)")
			continue
		}

		top := result.Nodes[0]
		fmt.Fprintf(out, "node=%s score=%.4f\n", top.ID, top.Score)
		fmt.Fprintln(out, "----------")
		fmt.Fprintln(out, "Cosine Similarity:")
		fmt.Fprintf(out, "%.4f\n", top.Score)
		fmt.Fprintln(out, "----------")
		fmt.Fprintln(out, "Reference text:")
		fmt.Fprintln(out, top.Text)
	}
}
