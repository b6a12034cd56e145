package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/fkorder/internal/graph"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMermaid Format = "mermaid"
)

// ParseFormat parses an output format name. An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatMermaid:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q (must be 'text', 'json', 'yaml', or 'mermaid')", s)
	}
}

// Options controls rendering.
type Options struct {
	SetName string
	Order   graph.Order
	Color   bool // text only
	Edges   bool // include foreign keys in text, json and yaml output
}

// Render writes result to w in the requested format.
func Render(w io.Writer, result *graph.Result, format Format, opts Options) error {
	if opts.Order == "" {
		opts.Order = graph.OrderCopy
	}

	switch format {
	case FormatText, "":
		return NewTextRenderer(w, opts.Color).Render(result, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(opts.SetName, result, opts.Order, opts.Edges))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(opts.SetName, result, opts.Order, opts.Edges)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMermaid:
		_, err := io.WriteString(w, Mermaid(result))
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
