package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"flagger/internal/diag"
	"flagger/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info func(a ...any) string
	note, code      func(a ...any) string
	gutter, caret   func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) string {
	label := strings.ToLower(sev.String())
	switch sev {
	case diag.SevError:
		return p.err(label)
	case diag.SevWarning:
		return p.warn(label)
	default:
		return p.info(label)
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <sev> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes
// в том же формате.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pr := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		pr.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	located := !d.Unlocated() && known(p.fs, d.Primary)
	head := fmt.Sprintf("%s %s: %s", p.pal.severity(d.Severity), p.pal.code(d.Code.ID()), d.Message)
	if located {
		head = p.location(d.Primary) + ": " + head
	}
	fmt.Fprintln(p.w, head)
	if located {
		p.snippet(d.Primary)
	}

	if p.opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			if d.Unlocated() || !known(p.fs, n.Span) {
				fmt.Fprintf(p.w, "  %s %s\n", p.pal.note("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(p.w, "  %s %s: %s\n", p.pal.note("note:"), p.location(n.Span), n.Msg)
			p.snippet(n.Span)
		}
	}
	if p.opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(p.w, "  %s %s\n", p.pal.note("help:"), fix.Title)
			for _, e := range fix.Edits {
				if known(p.fs, e.Span) {
					fmt.Fprintf(p.w, "    %s: replace %q with %q\n", p.location(e.Span), p.fs.Text(e.Span), e.NewText)
				}
			}
		}
	}
}

func (p *prettyPrinter) location(sp source.Span) string {
	f := p.fs.Get(sp.File)
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, p.fs, p.opts.PathMode), start.Line, start.Col)
}

// snippet prints the lines of sp with a gutter and marks the span on its
// first line. Multi-line spans are marked to the end of that line.
func (p *prettyPrinter) snippet(sp source.Span) {
	f := p.fs.Get(sp.File)
	start, end := p.fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if ctx := uint32(max(p.opts.Context, 0)); first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	gw := len(fmt.Sprint(start.Line))

	for ln := first; ln <= start.Line; ln++ {
		text := expandTabs(f.GetLine(ln))
		fmt.Fprintf(p.w, " %s %s %s\n", p.pal.gutter(fmt.Sprintf("%*d", gw, ln)), p.pal.gutter("|"), p.clip(text))
	}

	line := f.GetLine(start.Line)
	endCol := end.Col
	if end.Line != start.Line {
		endCol = uint32(len(line)) + 1
	}
	pad, mark := caretColumns(line, start.Col, endCol)
	fmt.Fprintf(p.w, " %s %s %s%s\n", strings.Repeat(" ", gw), p.pal.gutter("|"), strings.Repeat(" ", pad), p.pal.caret(mark))
}

func (p *prettyPrinter) clip(s string) string {
	if p.opts.Width == 0 || runewidth.StringWidth(s) <= int(p.opts.Width) {
		return s
	}
	return runewidth.Truncate(s, int(p.opts.Width), "…")
}

// caretColumns converts 1-based byte columns into display padding and a
// marker string "^~~~". Wide runes count double, tabs expand to tabWidth.
func caretColumns(line string, startCol, endCol uint32) (pad int, mark string) {
	startByte := min(int(startCol)-1, len(line))
	endByte := min(max(int(endCol)-1, startByte), len(line))
	startByte = max(startByte, 0)

	pad = runewidth.StringWidth(expandTabs(line[:startByte]))
	width := runewidth.StringWidth(expandTabs(line[:endByte])) - pad
	if width <= 1 {
		return pad, "^"
	}
	return pad, "^" + strings.Repeat("~", width-1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
