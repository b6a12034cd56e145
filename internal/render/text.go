package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/fkorder/internal/graph"
)

var (
	headerStyle  = color.New(color.FgCyan, color.OpBold)
	sectionStyle = color.New(color.FgYellow)
	cycleStyle   = color.New(color.FgRed, color.OpBold)
	dimStyle     = color.New(color.FgGray)
)

// TextRenderer prints a human readable report.
type TextRenderer struct {
	w     io.Writer
	color bool
}

// NewTextRenderer creates a text renderer writing to w.
func NewTextRenderer(w io.Writer, useColor bool) *TextRenderer {
	return &TextRenderer{w: w, color: useColor}
}

func (r *TextRenderer) paint(style color.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Sprint(s)
}

// Render prints the groups in opts.Order, the copy levels, the foreign keys
// when requested and a summary.
func (r *TextRenderer) Render(result *graph.Result, opts Options) error {
	g := result.Graph

	title := "Table Order"
	if opts.SetName != "" {
		title += ": " + opts.SetName
	}
	r.printHeader(title)
	fmt.Fprintln(r.w)

	direction := "referenced tables first"
	if opts.Order == graph.OrderDelete {
		direction = "dependent tables first"
	}
	r.printSection(fmt.Sprintf("%s Order (%s)", titleCase(string(opts.Order)), direction))

	groups := result.InOrder(opts.Order)
	numWidth := len(fmt.Sprintf("[%d]", len(groups)))
	for i, gr := range groups {
		num := runewidth.FillRight(fmt.Sprintf("[%d]", i+1), numWidth)
		line := strings.Join(gr.Tables, ", ")
		if gr.IsCycle() {
			line = r.paint(cycleStyle, line) + r.paint(dimStyle, "  cycle: "+strings.Join(g.CyclePath(gr), " -> "))
		}
		fmt.Fprintf(r.w, "  %s %s\n", num, line)
	}

	if levels := g.Levels(); len(levels) > 0 {
		fmt.Fprintln(r.w)
		r.printSection("Copy Levels (groups of a level are independent)")
		for i, level := range levels {
			names := make([]string, len(level))
			for j, gr := range level {
				names[j] = strings.Join(gr.Tables, "+")
			}
			fmt.Fprintf(r.w, "  Level %d: %s\n", i, strings.Join(names, ", "))
		}
	}

	if opts.Edges && g.EdgeCount() > 0 {
		fmt.Fprintln(r.w)
		r.printSection("Foreign Keys")
		r.printEdges(g)
	}

	fmt.Fprintln(r.w)
	r.printSection("Summary")
	fmt.Fprintf(r.w, "  Tables:       %d\n", g.TableCount())
	fmt.Fprintf(r.w, "  Groups:       %d\n", len(result.Groups))
	fmt.Fprintf(r.w, "  Cycles:       %d\n", result.CycleCount())
	fmt.Fprintf(r.w, "  Foreign Keys: %d\n", g.EdgeCount())

	return nil
}

// printEdges prints one aligned line per foreign key.
func (r *TextRenderer) printEdges(g *graph.Graph) {
	edges := g.AllEdges()

	width := 0
	for _, e := range edges {
		if w := runewidth.StringWidth(e.To); w > width {
			width = w
		}
	}

	for _, e := range edges {
		line := fmt.Sprintf("  %s -> %s", runewidth.FillRight(e.To, width), e.From)
		if meta := g.GetEdgeMeta(e.From, e.To); meta != nil && meta.Constraint != "" {
			line += r.paint(dimStyle, fmt.Sprintf("  (%s: %s", meta.Constraint, strings.Join(meta.Columns, ", ")))
			if meta.OnDelete != "" {
				line += r.paint(dimStyle, ", on delete "+strings.ToLower(meta.OnDelete))
			}
			line += r.paint(dimStyle, ")")
		}
		fmt.Fprintln(r.w, line)
	}
}

// printHeader prints a formatted header
func (r *TextRenderer) printHeader(title string) {
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(r.w, strings.Repeat("=", width))
	fmt.Fprintf(r.w, "  %s\n", r.paint(headerStyle, title))
	fmt.Fprintln(r.w, strings.Repeat("=", width))
}

// printSection prints a section header
func (r *TextRenderer) printSection(title string) {
	fmt.Fprintln(r.w, r.paint(sectionStyle, "["+title+"]"))
	fmt.Fprintln(r.w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
