package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/loamlabs/loam/internal/domain"
)

// ── Claude-inspired warm palette ──
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
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	infoStyle     = lipgloss.NewStyle().Foreground(info)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	zoneNameStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderProfile formats a discovery run summary for terminal output.
func RenderProfile(profile *domain.CodebaseProfile) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("loam")
	subtitle := dimStyle.Render("Codebase Profile")
	count := lipgloss.NewStyle().Bold(true).Foreground(accent).
		Render(fmt.Sprintf("%d zones", profile.Discovery.ZonesDiscovered))
	duration := dimStyle.Render(fmt.Sprintf("%dms", profile.Discovery.DurationMS))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + count + "  " + duration))
	b.WriteString("\n\n")

	if len(profile.Languages) > 0 {
		b.WriteString("  " + titleStyle.Render("Languages") + "  ")
		parts := make([]string, 0, len(profile.Languages))
		for _, l := range profile.Languages {
			parts = append(parts, fmt.Sprintf("%s %s", l.Name, dimStyle.Render(fmt.Sprintf("%.0f%%", l.Percentage))))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n\n")
	}

	// ── Zones ──
	for _, name := range sortedZoneNames(profile) {
		renderZoneSection(&b, name, profile.Zones[name])
	}

	// ── Interactions ──
	if len(profile.Interactions) > 0 {
		b.WriteString("  " + separatorLine + "\n\n")
		b.WriteString("  " + titleStyle.Render("Interactions") + "\n\n")
		for _, ix := range profile.Interactions {
			renderInteraction(&b, ix)
		}
		b.WriteString("\n")
	}

	if profile.Discovery.SkippedFiles > 0 || profile.Discovery.SkippedZones > 0 {
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf(
			"skipped %d files, %d zones (see discovery.log.json)",
			profile.Discovery.SkippedFiles, profile.Discovery.SkippedZones)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderZoneSection(b *strings.Builder, name string, zp *domain.ZoneProfile) {
	header := fmt.Sprintf("  %s %s %s",
		zoneNameStyle.Render(name),
		dimStyle.Render(zp.Language),
		faintStyle.Render(zp.Path))
	b.WriteString(header + "\n")

	files := fmt.Sprintf("%d files", zp.FileCount)
	layout := zp.Structure.Layout
	if layout == "" {
		layout = "flat"
	}
	fmt.Fprintf(b, "    %s  %s\n", dimStyle.Render(files), dimStyle.Render(layout))

	for _, p := range sortedPatterns(zp.Patterns) {
		if !p.Detected {
			continue
		}
		icon := passStyle.Render("●")
		if p.NeedsReview {
			icon = warnStyle.Render("●")
		}
		line := fmt.Sprintf("    %s %s", icon, padRight(p.Pattern, 24))
		if p.Variant != "" {
			line += " " + dimStyle.Render(p.Variant)
		}
		line += "  " + faintStyle.Render(fmt.Sprintf("%.2f", p.Confidence))
		b.WriteString(line + "\n")
	}

	for _, c := range sortedConventions(zp.Conventions) {
		fmt.Fprintf(b, "    %s %s %s  %s\n",
			infoStyle.Render("◆"),
			padRight(c.Category, 24),
			dimStyle.Render(c.Dominant),
			faintStyle.Render(fmt.Sprintf("%.0f%%", c.Consistency*100)))
	}

	for _, v := range zp.Architecture.Violations {
		tag := severityTag(v.Severity)
		fmt.Fprintf(b, "    %s %s → %s  %s\n",
			tag,
			v.FromModule, v.ToModule,
			faintStyle.Render(fmt.Sprintf("%s→%s", v.FromLayer, v.ToLayer)))
	}

	t := zp.Tests
	if t.TestFiles > 0 || len(t.UntestedFiles) > 0 {
		coverage := fmt.Sprintf("%.0f%% estimated", t.CoverageEstimate*100)
		style := passStyle
		switch {
		case t.CoverageEstimate < 0.4:
			style = failStyle
		case t.CoverageEstimate < 0.7:
			style = warnStyle
		}
		fmt.Fprintf(b, "    %s %d test files, %d cases, %s\n",
			dimStyle.Render("tests"), t.TestFiles, t.TestCases, style.Render(coverage))
	}

	b.WriteString("\n")
}

func renderInteraction(b *strings.Builder, ix domain.Interaction) {
	switch {
	case ix.FromZone != "":
		fmt.Fprintf(b, "    %s %s → %s\n",
			infoStyle.Render(padRight(ix.Type, 16)),
			ix.FromZone, ix.ToZone)
	default:
		fmt.Fprintf(b, "    %s %s\n",
			infoStyle.Render(padRight(ix.Type, 16)),
			strings.Join(ix.Zones, ", "))
	}
}

// RenderZones formats the zone table for terminal output.
func RenderZones(zones []domain.Zone) string {
	if len(zones) == 0 {
		return "  " + dimStyle.Render("No zones detected.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Zones") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, z := range zones {
		origin := string(z.Detection)
		var originStyled string
		switch z.Detection {
		case domain.DetectionManual:
			originStyled = warnStyle.Render(origin)
		case domain.DetectionHybrid:
			originStyled = infoStyle.Render(origin)
		default:
			originStyled = dimStyle.Render(origin)
		}

		fmt.Fprintf(&b, "  %s %s %s %s\n",
			zoneNameStyle.Render(padRight(z.Name, 20)),
			padRight(z.Language, 12),
			originStyled+strings.Repeat(" ", max(0, 8-len(origin))),
			faintStyle.Render(z.Path))
	}

	return b.String()
}

// RenderDiff formats profile differences for terminal output.
func RenderDiff(entries []domain.DiffEntry) string {
	if len(entries) == 0 {
		return "  " + passStyle.Render("No changes since last run.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Profile Changes") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		var tag string
		switch e.Kind {
		case domain.DiffAdded:
			tag = passStyle.Render("+ ")
		case domain.DiffRemoved:
			tag = failStyle.Render("- ")
		default:
			tag = warnStyle.Render("~ ")
		}

		scope := e.Field
		if e.Zone != "" {
			scope = e.Zone + "/" + e.Field
		}

		line := "  " + tag + scope
		switch e.Kind {
		case domain.DiffChanged:
			line += "  " + dimStyle.Render(e.Before+" → "+e.After)
		case domain.DiffAdded:
			if e.After != "" {
				line += "  " + dimStyle.Render(e.After)
			}
		case domain.DiffRemoved:
			if e.Before != "" {
				line += "  " + dimStyle.Render(e.Before)
			}
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func severityTag(severity string) string {
	if severity == domain.SeverityMajor {
		return failStyle.Bold(true).Render("major")
	}
	return warnStyle.Render("minor")
}

func sortedZoneNames(p *domain.CodebaseProfile) []string {
	names := make([]string, 0, len(p.Zones))
	for name := range p.Zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedPatterns(m map[string]domain.PatternDetection) []domain.PatternDetection {
	out := make([]domain.PatternDetection, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

func sortedConventions(m map[string]domain.ConventionDetection) []domain.ConventionDetection {
	out := make([]domain.ConventionDetection, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
