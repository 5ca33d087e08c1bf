package footprint

import "strings"

// Result reports what Strip removed from one file.
type Result struct {
	Content            string
	RemovedGeometry    int
	RemovedDesignators int
}

// Modified returns true if anything was removed.
func (r Result) Modified() bool {
	return r.RemovedGeometry > 0 || r.RemovedDesignators > 0
}

// HasCourtyard reports whether content contains any target layer tag.
// Files without one are copied through unchanged by the pipeline.
func (s *Stripper) HasCourtyard(content string) bool {
	return s.layerRe.MatchString(content)
}

// Strip removes all recognized geometric elements tagged with a target
// layer. When designator removal is enabled it runs as a second pass over
// the already-stripped content.
func (s *Stripper) Strip(content string) Result {
	stripped, removed := s.stripGeometry(content)
	res := Result{Content: stripped, RemovedGeometry: removed}

	if s.designators {
		res.Content, res.RemovedDesignators = s.StripDesignators(res.Content)
	}
	return res
}

// stripGeometry is the core scan: walk the lines, delimit each recognized
// element by parenthesis balance, and drop the ones on a target layer.
func (s *Stripper) stripGeometry(content string) (string, int) {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	removed := 0

	i := 0
	for i < len(lines) {
		if !s.elementRe.MatchString(lines[i]) {
			result = append(result, lines[i])
			i++
			continue
		}

		end := scanElement(lines, i)
		block := strings.Join(lines[i:end], "\n")
		if s.layerRe.MatchString(block) {
			removed++
		} else {
			result = append(result, lines[i:end]...)
		}
		i = end
	}

	return strings.Join(result, "\n"), removed
}

// StripDesignators removes reference designator fields (old fp_text and new
// property format) regardless of layer.
func (s *Stripper) StripDesignators(content string) (string, int) {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	removed := 0

	i := 0
	for i < len(lines) {
		if !designatorRe.MatchString(lines[i]) {
			result = append(result, lines[i])
			i++
			continue
		}
		removed++
		i = scanElement(lines, i)
	}

	return strings.Join(result, "\n"), removed
}

// CountCourtyardElements counts the removable elements without modifying
// anything. Used by the check command.
func (s *Stripper) CountCourtyardElements(content string) int {
	lines := strings.Split(content, "\n")
	count := 0

	i := 0
	for i < len(lines) {
		if !s.elementRe.MatchString(lines[i]) {
			i++
			continue
		}
		end := scanElement(lines, i)
		if s.layerRe.MatchString(strings.Join(lines[i:end], "\n")) {
			count++
		}
		i = end
	}
	return count
}
