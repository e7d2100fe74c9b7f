// Package report summarizes stored posts per category, tag and author.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/newsroomlab/pressharvest/internal/store"
)

// Group selects which entity the report counts posts for.
type Group string

// Method selects the counting source. MethodAll reads the usage count the
// remote reports on each term; MethodDatabase counts stored rows.
type Method string

// Format selects the output rendering.
type Format string

const (
	GroupCategory Group = "category"
	GroupTag      Group = "tag"
	GroupAuthor   Group = "author"

	MethodAll      Method = "all"
	MethodDatabase Method = "database"

	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// ParseGroup validates a group flag value.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupCategory, GroupTag, GroupAuthor:
		return g, nil
	default:
		return "", fmt.Errorf("unknown report group %q", s)
	}
}

// ParseMethod validates a method flag value.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodAll, MethodDatabase:
		return m, nil
	default:
		return "", fmt.Errorf("unknown report method %q", s)
	}
}

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Source provides the stored counts a report is built from.
type Source interface {
	CategoryPostCountsRemote(ctx context.Context) ([]store.NameCount, error)
	CategoryPostCountsLocal(ctx context.Context) ([]store.NameCount, error)
	TagPostCountsRemote(ctx context.Context) ([]store.NameCount, error)
	TagPostCountsLocal(ctx context.Context) ([]store.NameCount, error)
	AuthorPostCounts(ctx context.Context) ([]store.NameCount, error)
}

// Generator produces post-count reports from a Source.
type Generator struct {
	src Source
}

// NewGenerator builds a Generator over src.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// Counts returns the post counts for group using method. Authors carry no
// remote usage count, so the author group supports only MethodDatabase.
func (g *Generator) Counts(ctx context.Context, group Group, method Method) ([]store.NameCount, error) {
	switch group {
	case GroupCategory:
		if method == MethodAll {
			return g.src.CategoryPostCountsRemote(ctx)
		}
		return g.src.CategoryPostCountsLocal(ctx)
	case GroupTag:
		if method == MethodAll {
			return g.src.TagPostCountsRemote(ctx)
		}
		return g.src.TagPostCountsLocal(ctx)
	case GroupAuthor:
		if method != MethodDatabase {
			return nil, fmt.Errorf("author report supports only the %q method", MethodDatabase)
		}
		return g.src.AuthorPostCounts(ctx)
	default:
		return nil, fmt.Errorf("unknown report group %q", group)
	}
}

// Render writes counts to w in the requested format.
func Render(w io.Writer, group Group, counts []store.NameCount, format Format) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{string(group), "posts"})
	for _, nc := range counts {
		t.AppendRow(table.Row{nc.Name, nc.Count})
	}

	var rendered string
	switch format {
	case FormatCSV:
		rendered = t.RenderCSV()
	case FormatTable:
		rendered = t.Render()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	if _, err := fmt.Fprintln(w, rendered); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
