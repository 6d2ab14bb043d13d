package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mind-engage/bizassess/internal/scoring"
)

// scoreInput is the document read by `assessd score`.
type scoreInput struct {
	Responses []scoring.Response `json:"responses"`
	Questions []scoring.Question `json:"questions"`
	Themes    []scoreTheme       `json:"themes"`
}

type scoreTheme struct {
	scoring.Theme
	Name string `json:"name,omitempty"`
}

func newScoreCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <input.json|->",
		Short: "Score a set of responses offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readScoreInput(args[0])
			if err != nil {
				return exitError(3, "failed to load input: %v", err)
			}
			themes := make([]scoring.Theme, len(in.Themes))
			names := make(map[string]string, len(in.Themes))
			for i, t := range in.Themes {
				themes[i] = t.Theme
				names[t.ID] = t.Name
			}
			res := scoring.Aggregate(in.Responses, in.Questions, themes)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderResult(res, names))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func readScoreInput(path string) (scoreInput, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return scoreInput{}, err
		}
		defer f.Close()
		r = f
	}
	var in scoreInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return scoreInput{}, fmt.Errorf("decode: %w", err)
	}
	return in, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2B6CB0"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
)

func bandStyle(b scoring.Band) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color(b.Color()))
}

func renderResult(res scoring.Result, names map[string]string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Performance by Theme"))
	sb.WriteString("\n")

	headers := []string{"Theme", "Mean", "Percentage", "Band"}
	rows := make([][]string, 0, len(res.ThemeScores))
	for _, ts := range res.ThemeScores {
		name := names[ts.ThemeID]
		if name == "" {
			name = ts.ThemeID
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.2f/5", ts.MeanScore),
			fmt.Sprintf("%.1f%%", ts.Percentage),
			ts.PerformanceBand.Label(),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h) + 2
	}
	for _, row := range rows {
		for i, c := range row {
			if w := lipgloss.Width(c) + 2; w > widths[i] {
				widths[i] = w
			}
		}
	}

	sep := mutedStyle.Render("|")
	for i, h := range headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")
	for ri, row := range rows {
		band := res.ThemeScores[ri].PerformanceBand
		for i, c := range row {
			if i > 0 {
				sb.WriteString(sep)
			}
			style := cellStyle
			if i == len(row)-1 {
				style = bandStyle(band)
			}
			sb.WriteString(style.Width(widths[i]).Render(c))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	s := res.Summary
	if !s.Scored() {
		sb.WriteString(mutedStyle.Render("No themes scored."))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Composite: %.2f/5 (%.1f%%) ", *s.CompositeMean, *s.CompositePercentage))
	sb.WriteString(bandStyle(s.PerformanceBand).Render(s.PerformanceBand.Label()))
	sb.WriteString("\n")
	return sb.String()
}
