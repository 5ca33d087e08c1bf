package ui

import (
	"fmt"
	"strings"

	"fpstrip/internal/pipeline"
)

// RenderSummary renders the post-run summary for the strip and watch
// commands.
func RenderSummary(s pipeline.Summary) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Strip complete"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (run %s)", shortID(s.RunID))))
	b.WriteString("\n")
	b.WriteString(rowStyle.Render(fmt.Sprintf("Footprints: %d", s.Files)))
	b.WriteString("\n")

	for _, v := range s.Variants {
		line := fmt.Sprintf("%-10s %s: %d written, %d modified, %d elements removed",
			v.Suffix, v.OutputDir, v.Written, v.Modified, v.RemovedGeometry)
		if v.RemovedDesignators > 0 {
			line += fmt.Sprintf(", %d designators removed", v.RemovedDesignators)
		}
		if v.Failures > 0 {
			line += dangerStyle.Render(fmt.Sprintf(", %d failed", v.Failures))
		}
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}

	if s.Failures() == 0 {
		b.WriteString(successStyle.Render("OK"))
	} else {
		b.WriteString(dangerStyle.Render(fmt.Sprintf("%d failure(s)", s.Failures())))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderReports renders the check command output.
func RenderReports(inputDir string, reports []pipeline.FileReport) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Courtyard report for %s", inputDir)))
	b.WriteString("\n")

	withCourtyard := 0
	for _, r := range reports {
		var status string
		switch {
		case r.Err != nil:
			status = dangerStyle.Render(fmt.Sprintf("unreadable: %v", r.Err))
		case r.HasCourtyard:
			status = successStyle.Render(fmt.Sprintf("%d removable element(s)", r.Removable))
			withCourtyard++
		default:
			status = warningStyle.Render("no courtyard")
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-40s %s", r.Name, status)))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(
		fmt.Sprintf("%d/%d footprints carry courtyard geometry", withCourtyard, len(reports))))
	b.WriteString("\n")

	return b.String()
}

// shortID trims a uuid down to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
