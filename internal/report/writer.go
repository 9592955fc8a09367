package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/arcanaland/cardtsv/internal/card"
)

// Separator joins the columns of a report line
const Separator = "\t"

// Diagnostic flags a field whose value holds an odd number of double
// quotes. Spreadsheet readers may mis-split such a line.
type Diagnostic struct {
	Code   string
	Field  string
	Quotes int
	Value  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Card code: %s field: %s quote characters: %d: %s", d.Code, d.Field, d.Quotes, d.Value)
}

// QuoteMismatches returns one diagnostic per field of c, in fields order,
// whose value holds an odd number of double quotes
func QuoteMismatches(c card.Flat, fields []string) []Diagnostic {
	var diags []Diagnostic
	for _, field := range fields {
		value, ok := c[field]
		if !ok {
			continue
		}
		if n := strings.Count(value, `"`); n%2 != 0 {
			diags = append(diags, Diagnostic{
				Code:   c[card.CodeField],
				Field:  field,
				Quotes: n,
				Value:  value,
			})
		}
	}
	return diags
}

// Writer renders cards as a tab separated report
type Writer struct {
	out  io.Writer
	diag io.Writer
	warn *color.Color
}

// NewWriter returns a writer emitting the report to out and quote
// diagnostics to diag
func NewWriter(out, diag io.Writer) *Writer {
	return &Writer{
		out:  out,
		diag: diag,
		warn: color.New(color.FgYellow),
	}
}

// Write emits the header line of fields followed by one line per card.
// Diagnostics for a card are written before its line.
func (w *Writer) Write(fields []string, cards []card.Flat) ([]Diagnostic, error) {
	out := bufio.NewWriter(w.out)

	if _, err := fmt.Fprintln(out, strings.Join(fields, Separator)); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	var all []Diagnostic
	line := make([]string, len(fields))
	for _, c := range cards {
		for _, d := range QuoteMismatches(c, fields) {
			if _, err := w.warn.Fprintln(w.diag, d.String()); err != nil {
				return nil, fmt.Errorf("error writing diagnostic: %w", err)
			}
			all = append(all, d)
		}

		for i, field := range fields {
			line[i] = c[field]
		}
		if _, err := fmt.Fprintln(out, strings.Join(line, Separator)); err != nil {
			return nil, fmt.Errorf("error writing card %s: %w", c[card.CodeField], err)
		}
	}

	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("error writing report: %w", err)
	}

	return all, nil
}
