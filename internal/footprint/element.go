// Package footprint implements the element scanner for KiCad footprint
// (.kicad_mod) files. The format is S-expression-like but the scanner is
// deliberately not a parser: it delimits one complete element at a time by
// tracking a running parenthesis-depth counter across lines, then tests the
// element text for a target layer tag.
package footprint

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultElements are the geometric element keywords that can carry a layer
// tag and are subject to removal.
var DefaultElements = []string{"fp_rect", "fp_line", "fp_poly", "fp_circle", "fp_arc"}

// DefaultLayers are the courtyard layer names stripped by default.
var DefaultLayers = []string{"F.CrtYd", "B.CrtYd"}

// Options configures a Stripper.
type Options struct {
	// Elements lists the element keywords whose blocks are candidates for
	// removal. Empty means DefaultElements.
	Elements []string

	// Layers lists the layer tag names that mark a block for removal.
	// Empty means DefaultLayers.
	Layers []string

	// Designators enables removal of the reference designator field
	// (fp_text reference / property "Reference") in addition to geometry.
	Designators bool
}

// Stripper holds the compiled matchers for one Options set.
type Stripper struct {
	elementRe   *regexp.Regexp
	layerRe     *regexp.Regexp
	designators bool
}

// designatorRe matches the opening line of a reference designator field in
// both the older fp_text format and the newer property format.
var designatorRe = regexp.MustCompile(`^\s*\((?:fp_text\s+reference\b|property\s+"Reference")`)

// NewStripper compiles the matchers for opts.
func NewStripper(opts Options) (*Stripper, error) {
	elements := opts.Elements
	if len(elements) == 0 {
		elements = DefaultElements
	}
	layers := opts.Layers
	if len(layers) == 0 {
		layers = DefaultLayers
	}

	for _, e := range elements {
		if strings.TrimSpace(e) == "" {
			return nil, fmt.Errorf("empty element keyword")
		}
	}
	for _, l := range layers {
		if strings.TrimSpace(l) == "" {
			return nil, fmt.Errorf("empty layer name")
		}
	}

	quoted := make([]string, len(elements))
	for i, e := range elements {
		quoted[i] = regexp.QuoteMeta(e)
	}
	elementRe, err := regexp.Compile(`^\s*\((` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile element pattern: %w", err)
	}

	layerQuoted := make([]string, len(layers))
	for i, l := range layers {
		layerQuoted[i] = regexp.QuoteMeta(l)
	}
	layerRe, err := regexp.Compile(`layer\s+"(` + strings.Join(layerQuoted, "|") + `)"`)
	if err != nil {
		return nil, fmt.Errorf("compile layer pattern: %w", err)
	}

	return &Stripper{
		elementRe:   elementRe,
		layerRe:     layerRe,
		designators: opts.Designators,
	}, nil
}

// scanElement returns the index one past the last line of the element that
// opens at lines[start]. Depth is raw parenthesis counting; parens inside
// quoted strings are not special-cased. An element still open at EOF
// extends to EOF.
func scanElement(lines []string, start int) int {
	depth := strings.Count(lines[start], "(") - strings.Count(lines[start], ")")
	end := start + 1
	for end < len(lines) && depth > 0 {
		depth += strings.Count(lines[end], "(") - strings.Count(lines[end], ")")
		end++
	}
	return end
}
