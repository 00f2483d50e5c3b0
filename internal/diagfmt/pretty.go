package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jasmine/internal/diag"
)

// maxLexemeWidth bounds the quoted lexeme on the "at" line.
const maxLexemeWidth = 40

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой:
//
//	<path>:<line>: <SEV> <CODE>: <Message>
//	    at '<lexeme>'
//	  note: line N: <msg>
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	codeColor := color.New(color.Bold)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{sevColor[diag.SevError], sevColor[diag.SevWarning], sevColor[diag.SevInfo], codeColor, dim} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range bag.Items() {
		loc := formatPath(d.File, opts.PathMode, opts.BaseDir)
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Line)
		}
		msg := d.Message
		if opts.Width > 0 {
			msg = runewidth.Truncate(msg, opts.Width, "…")
		}
		sc := sevColor[d.Severity]
		if sc == nil {
			sc = sevColor[diag.SevError]
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sc.Sprint(d.Severity), codeColor.Sprint(d.Code.ID()), msg); err != nil {
			return err
		}
		if d.Lexeme != "" {
			lex := runewidth.Truncate(d.Lexeme, maxLexemeWidth, "…")
			if _, err := fmt.Fprintf(w, "    %s\n", dim.Sprintf("at '%s'", lex)); err != nil {
				return err
			}
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  note: line %d: %s\n", n.Line, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}
