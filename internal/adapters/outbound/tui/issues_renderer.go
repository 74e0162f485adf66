package tui

import (
	"fmt"
	"strings"

	"github.com/complykit/complykit/internal/domain"
)

// RenderIssues lists issues grouped by the identifier they are attached to,
// in identifier order.
func RenderIssues(issues map[domain.Identifier][]domain.Issue) string {
	if len(issues) == 0 {
		return "  " + passStyle.Render("No issues found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Issues") + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	for _, id := range domain.SortedIssueIDs(issues) {
		fmt.Fprintf(&b, "  %s %s\n", pkgStyle.Render(id.Coordinates()),
			dimStyle.Render(fmt.Sprintf("(%d)", len(issues[id]))))
		for _, issue := range issues[id] {
			fmt.Fprintf(&b, "    %s %s %s\n",
				severityTag(issue.Severity),
				faintStyle.Render(issue.Source),
				dimStyle.Render(issue.Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderScanResults lists the stored scan results of one package.
func RenderScanResults(container domain.ScanResultContainer) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render("Stored scan results"), pkgStyle.Render(container.ID.Coordinates()))
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	if len(container.Results) == 0 {
		b.WriteString("  " + dimStyle.Render("No stored scan results found.") + "\n")
		return b.String()
	}

	for _, r := range container.Results {
		scanner := fmt.Sprintf("%s %s", r.Scanner.Name, r.Scanner.Version)
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			dimStyle.Render(r.Summary.StartTime.UTC().Format("2006-01-02")),
			ruleStyle.Render(scanner),
			faintStyle.Render(provenance(r.Provenance)))
		findings := "no license findings"
		if len(r.Summary.LicenseFindings) > 0 {
			findings = strings.Join(r.Summary.LicenseFindings, ", ")
		}
		fmt.Fprintf(&b, "    %s  %s\n",
			dimStyle.Render(fmt.Sprintf("%d files", r.Summary.FileCount)),
			pkgStyle.Render(findings))
		for _, issue := range r.Summary.Issues {
			fmt.Fprintf(&b, "    %s %s\n", severityTag(issue.Severity), dimStyle.Render(issue.Message))
		}
	}

	return b.String()
}

func provenance(p domain.Provenance) string {
	switch {
	case p.VcsInfo != nil && p.VcsInfo.URL != "":
		return p.VcsInfo.URL + "@" + shortHash(p.VcsInfo.Revision)
	case p.SourceArtifact != nil:
		return p.SourceArtifact.URL
	default:
		return "unknown provenance"
	}
}
