// Package render draws the local dependency graph of a monorepo.
//
// # Overview
//
// [ToDOT] produces Graphviz DOT source where every member is a box and every
// local dependency an arrow from the dependent member to its dependency.
// Members of the same plan batch share a rank, so the picture reads as the
// execution plan: the first batch at the bottom, the last one at the top.
//
// # Usage
//
//	plan, _ := repo.Plan()
//	dot := render.ToDOT(plan, render.Options{})
//	svg, err := render.Render(ctx, dot, render.FormatSVG)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering; no Graphviz installation is needed.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// Format is an output format of [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported graph format %q (want dot, svg or png)", s)
}

// Options configures diagram generation.
type Options struct {
	// Detailed adds the version and directory of each member to its label.
	Detailed bool
}

// ToDOT converts an execution plan to Graphviz DOT.
func ToDOT(plan [][]*monorepo.Member, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph monorepo {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i, batch := range plan {
		fmt.Fprintf(&buf, "\n  subgraph batch_%d {\n    rank=same;\n", i)
		for _, m := range batch {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", m.Name, label(m, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, batch := range plan {
		for _, m := range batch {
			for _, dep := range m.LocalDeps {
				fmt.Fprintf(&buf, "  %q -> %q;\n", dep.Name, m.Name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(m *monorepo.Member, detailed bool) string {
	if !detailed {
		return m.Name
	}
	parts := []string{m.Name}
	if m.Manifest != nil {
		if v := m.Manifest.Version(); v != "" {
			parts = append(parts, "version: "+v)
		}
	}
	parts = append(parts, "dir: "+m.Top)
	return strings.Join(parts, "\n")
}

// Render lays out DOT source with Graphviz. FormatDOT returns dot as is.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	if format == FormatDOT {
		return []byte(dot), nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	gvFormat := graphviz.SVG
	if format == FormatPNG {
		gvFormat = graphviz.PNG
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the point-based size Graphviz writes with the
// viewBox dimensions so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
