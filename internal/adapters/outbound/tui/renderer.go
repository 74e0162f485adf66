package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/complykit/complykit/internal/domain"
	"github.com/fatih/camelcase"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	hintTagStyle  = lipgloss.NewStyle().Foreground(info)
	pkgStyle      = lipgloss.NewStyle().Foreground(fg)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	ruleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	fixStyle      = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderEvaluation renders an evaluation report for the terminal.
func RenderEvaluation(report *domain.EvaluationReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("complykit")
	subtitle := dimStyle.Render("License Compliance Evaluation")
	status := passStyle.Bold(true).Render("PASSED")
	if report.Failed() {
		status = errorTagStyle.Render("FAILED")
	}
	failOn := dimStyle.Render(fmt.Sprintf("fail on %s", report.FailOn))
	header := title + "\n" + subtitle + "\n\n" + status + "  " + failOn
	if report.Revision != "" {
		header += "\n" + faintStyle.Render("revision "+shortHash(report.Revision))
	}

	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	// ── Violations, most severe first ──
	if len(report.Violations) == 0 {
		b.WriteString("  " + passStyle.Render("No rule violations found.") + "\n")
	}
	for i := len(domain.AllSeverities) - 1; i >= 0; i-- {
		sev := domain.AllSeverities[i]
		var vs []domain.Violation
		for _, v := range report.Violations {
			if v.Severity == sev {
				vs = append(vs, v)
			}
		}
		if len(vs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n\n", titleStyle.Render(sectionTitle(sev)), dimStyle.Render(fmt.Sprintf("(%d)", len(vs))))
		for _, v := range vs {
			renderViolation(&b, v)
		}
	}

	// ── Resolved ──
	if len(report.Resolved) > 0 {
		fmt.Fprintf(&b, "  %s %s\n\n", titleStyle.Render("Resolved"), dimStyle.Render(fmt.Sprintf("(%d)", len(report.Resolved))))
		for _, r := range report.Resolved {
			fmt.Fprintf(&b, "    %s %s %s\n",
				faintStyle.Render("✓"),
				dimStyle.Render(HumanizeRule(r.Violation.Rule)),
				faintStyle.Render(r.Violation.Pkg.Coordinates()))
			reason := r.Resolution.Reason
			if r.Resolution.Comment != "" {
				reason += ": " + r.Resolution.Comment
			}
			fmt.Fprintf(&b, "      %s\n", faintStyle.Render(reason))
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n\n")
	b.WriteString("  " + renderSummary(report.Summary) + "\n\n")

	return b.String()
}

func renderViolation(b *strings.Builder, v domain.Violation) {
	license := ""
	if v.License != "" {
		license = "  " + dimStyle.Render(v.License)
		if v.LicenseSource != domain.LicenseSourceNone {
			license += " " + faintStyle.Render("("+strings.ToLower(string(v.LicenseSource))+")")
		}
	}
	fmt.Fprintf(b, "    %s %s %s%s\n",
		severityTag(v.Severity),
		ruleStyle.Render(HumanizeRule(v.Rule)),
		pkgStyle.Render(v.Pkg.Coordinates()),
		license)
	fmt.Fprintf(b, "          %s\n", dimStyle.Render(v.Message))
	if v.HowToFix != "" {
		fmt.Fprintf(b, "          %s\n", fixStyle.Render("→ "+v.HowToFix))
	}
	b.WriteString("\n")
}

func renderSummary(s domain.EvaluationSummary) string {
	parts := []string{
		errorTagStyle.Render(fmt.Sprintf("%d errors", s.Errors)),
		warnTagStyle.Render(fmt.Sprintf("%d warnings", s.Warnings)),
		hintTagStyle.Render(fmt.Sprintf("%d hints", s.Hints)),
		dimStyle.Render(fmt.Sprintf("%d resolved", s.Resolved)),
		dimStyle.Render(fmt.Sprintf("%d issues", s.Issues)),
	}
	return strings.Join(parts, "  ")
}

func sectionTitle(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return "Errors"
	case domain.SeverityWarning:
		return "Warnings"
	default:
		return "Hints"
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return hintTagStyle.Render("hint ")
	}
}

// HumanizeRule turns rule names such as DENIED_LICENSE or
// copyleftInDependency into "Denied License" and "Copyleft In Dependency".
func HumanizeRule(name string) string {
	var words []string
	for _, part := range camelcase.Split(name) {
		if !isWord(part) {
			continue
		}
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		words = append(words, string(runes))
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
