package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/mind-engage/bizassess/internal/assessment"
	"github.com/mind-engage/bizassess/internal/scoring"
)

//go:embed report.html.tmpl
var reportHTML string

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"mean":      func(v *float64) string { return fixed(v, "%.2f") },
	"percent":   func(v *float64) string { return fixed(v, "%.1f%%") },
	"bandColor": func(b scoring.Band) template.CSS { return template.CSS(b.Color()) },
	"date":      func(t time.Time) string { return t.Format("January 2, 2006") },
	"datetime":  func(t time.Time) string { return t.Format("January 2, 2006 at 3:04 PM MST") },
}).Parse(reportHTML))

// Data is everything the report template reads.
type Data struct {
	AssessmentID string
	Business     assessment.BusinessRef
	CompletedAt  time.Time
	GeneratedAt  time.Time
	Summary      scoring.Summary
	ThemeScores  []assessment.ThemeResult
}

// NewData flattens scored results into template data.
func NewData(res *assessment.Results, generatedAt time.Time) Data {
	d := Data{
		AssessmentID: res.ID,
		Business:     res.Business,
		GeneratedAt:  generatedAt,
		ThemeScores:  res.ThemeScores,
	}
	if res.CompletedAt != nil {
		d.CompletedAt = *res.CompletedAt
	}
	if res.Summary != nil {
		d.Summary = *res.Summary
	}
	return d
}

// RenderHTML executes the embedded report template.
func RenderHTML(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("report: render html: %w", err)
	}
	return buf.Bytes(), nil
}

func fixed(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}
