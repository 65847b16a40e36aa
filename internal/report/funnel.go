package report

import (
	"strings"

	"github.com/hdrscope/hdrscope/internal/funnel"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func RenderFunnelText(reports ...*funnel.Report) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		printer.Fprintf(&b, "%s (%s)\n", r.Label, r.Mode)
		printer.Fprintf(&b, "Total headers: %d\n", r.Total)
		for _, s := range r.Stages {
			printer.Fprintf(&b, "  %-18s in %8d  removed %8d\n", s.Stage, s.Entering, s.Removed)
		}
		printer.Fprintf(&b, "Survivors: %d\n", r.Survived)
	}
	return b.String()
}

func RenderFunnelMarkdown(reports ...*funnel.Report) string {
	var b strings.Builder
	for _, r := range reports {
		b.WriteString("## ")
		b.WriteString(r.Label)
		b.WriteString("\n\n")
		printer.Fprintf(&b, "Mode: %s, total headers: %d, survivors: %d\n\n", r.Mode, r.Total, r.Survived)
		b.WriteString("| Stage | Headers in | Removed |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, s := range r.Stages {
			printer.Fprintf(&b, "| %s | %d | %d |\n", s.Stage, s.Entering, s.Removed)
		}
		b.WriteString("\n")
	}
	return b.String()
}
