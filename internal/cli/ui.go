package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/repolens/pkg/pipeline"
	"github.com/matzehuels/repolens/pkg/scoring"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, high scores
	colorYellow = lipgloss.Color("220") // warnings, middling scores
	colorRed    = lipgloss.Color("167") // errors, low scores
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	styleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
	styleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey       = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleScoreHigh = lipgloss.NewStyle().Foreground(colorGreen)
	styleScoreMid  = lipgloss.NewStyle().Foreground(colorYellow)
	styleScoreLow  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess  = "✓"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconBullet   = "•"
	iconFallback = "fallback"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

// scoreStyle colors a relevance score by band.
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.7:
		return styleScoreHigh
	case score >= 0.4:
		return styleScoreMid
	default:
		return styleScoreLow
	}
}

// scoreBar renders score as a bar of width cells.
func scoreBar(score float64, width int) string {
	filled := int(score*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderProfile writes a human-readable profile to w. At most limit ranked
// projects are listed; zero lists all of them.
func renderProfile(w io.Writer, r *pipeline.Result, limit int) {
	name := r.User.Login
	if r.User.Name != "" {
		name = fmt.Sprintf("%s (%s)", r.User.Name, r.User.Login)
	}
	fmt.Fprintln(w, styleTitle.Render(name))
	if r.User.HTMLURL != "" {
		fmt.Fprintln(w, styleLink.Render(r.User.HTMLURL))
	}
	fmt.Fprintln(w)

	if r.Resume.Summary != "" {
		fmt.Fprintln(w, styleTitle.Render("Summary"))
		fmt.Fprintln(w, r.Resume.Summary)
		fmt.Fprintln(w)
	}

	if len(r.Resume.Skills) > 0 {
		fmt.Fprintln(w, styleKey.Render("Skills")+" "+styleHighlight.Render(strings.Join(r.Resume.Skills, ", ")))
		fmt.Fprintln(w)
	}

	if len(r.Resume.Projects) > 0 {
		fmt.Fprintln(w, styleTitle.Render("Highlighted projects"))
		for _, p := range r.Resume.Projects {
			fmt.Fprintf(w, "%s %s\n", styleValue.Bold(true).Render(p.Name), styleDim.Render(p.Repo))
			for _, b := range p.Bullets {
				fmt.Fprintf(w, "  %s %s\n", styleDim.Render(iconBullet), b)
			}
			if len(p.Skills) > 0 {
				fmt.Fprintln(w, "  "+styleDim.Render(strings.Join(p.Skills, " · ")))
			}
		}
		fmt.Fprintln(w)
	}

	projects := r.Projects
	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	if len(projects) > 0 {
		fmt.Fprintln(w, styleTitle.Render("Ranking"))
		for i, p := range projects {
			fmt.Fprintln(w, renderRank(i+1, p))
		}
		if hidden := len(r.Projects) - len(projects); hidden > 0 {
			fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("  … %d more", hidden)))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, styleDim.Render(r.Stats.String()))
}

func renderRank(n int, p scoring.ScoredProject) string {
	style := scoreStyle(p.RelevanceScore)
	line := fmt.Sprintf("%3d. %s %s %-24s", n,
		style.Render(scoreBar(p.RelevanceScore, 10)),
		style.Render(fmt.Sprintf("%.2f", p.RelevanceScore)),
		p.Name)
	if p.IsFallback() {
		line += " " + styleWarning.Render(iconFallback)
	} else if p.Reasoning != "" {
		line += " " + styleDim.Render(truncate(p.Reasoning, 60))
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// redactURL strips credentials from a connection string.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
