package nn

import (
	"fmt"
	"strings"
)

// LayerSummary describes one leaf module of a network.
type LayerSummary struct {
	Path   string
	Layer  string
	Params int
}

// Summary lists the leaf modules of m depth-first with their parameter
// counts.
func Summary(m Module) []LayerSummary {
	var out []LayerSummary
	summarize(m, "", &out)
	return out
}

func summarize(m Module, path string, out *[]LayerSummary) {
	if c, ok := m.(Container); ok {
		for i, child := range c.Children() {
			summarize(child, joinPath(path, i), out)
		}
		return
	}
	*out = append(*out, LayerSummary{
		Path:   path,
		Layer:  describe(m),
		Params: CountParameters(m.Parameters()),
	})
}

// FormatSummary renders a summary as an aligned table with a total line.
func FormatSummary(name string, layers []LayerSummary) string {
	var b strings.Builder
	total := 0
	fmt.Fprintf(&b, "%s\n", name)
	for _, l := range layers {
		fmt.Fprintf(&b, "  %-12s %-40s %10d\n", l.Path, l.Layer, l.Params)
		total += l.Params
	}
	fmt.Fprintf(&b, "  total params: %d", total)
	return b.String()
}

func joinPath(path string, i int) string {
	if path == "" {
		return fmt.Sprint(i)
	}
	return fmt.Sprintf("%s.%d", path, i)
}

func describe(m Module) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
