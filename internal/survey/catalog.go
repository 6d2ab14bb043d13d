// Package survey owns the questionnaire: themes, their weights and the
// questions asked under each.
package survey

import (
	_ "embed"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// namespace for deterministic theme and question ids.
var idSpace = uuid.MustParse("8f3c1a5e-6b1d-4f0e-9c77-2b4f9e6a0d31")

// Catalog is the authoring format of the survey.
type Catalog struct {
	Themes []ThemeSpec `yaml:"themes"`
}

type ThemeSpec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Weight      float64        `yaml:"weight"`
	Questions   []QuestionSpec `yaml:"questions"`
}

type QuestionSpec struct {
	Text    string `yaml:"text"`
	Help    string `yaml:"help"`
	Reverse bool   `yaml:"reverse"`
}

// Builtin returns the embedded catalog.
func Builtin() (Catalog, error) {
	return Load(bytes.NewReader(builtinCatalog))
}

// LoadFile reads a catalog from path, or the embedded one when path is empty.
func LoadFile(path string) (Catalog, error) {
	if path == "" {
		return Builtin()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("survey: open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("survey: decode catalog: %w", err)
	}
	for i := range c.Themes {
		if c.Themes[i].Weight == 0 {
			c.Themes[i].Weight = 1.0
		}
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate reports every structural problem in the catalog at once.
func (c Catalog) Validate() error {
	var errs []error
	if len(c.Themes) == 0 {
		errs = append(errs, errors.New("catalog has no themes"))
	}
	names := map[string]bool{}
	for i, t := range c.Themes {
		name := strings.TrimSpace(t.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("theme %d: empty name", i+1))
		case names[strings.ToLower(name)]:
			errs = append(errs, fmt.Errorf("theme %q: duplicate name", name))
		}
		names[strings.ToLower(name)] = true
		if t.Weight <= 0 || math.IsNaN(t.Weight) || math.IsInf(t.Weight, 0) {
			errs = append(errs, fmt.Errorf("theme %q: weight must be a positive number", name))
		}
		if len(t.Questions) == 0 {
			errs = append(errs, fmt.Errorf("theme %q: no questions", name))
		}
		texts := map[string]bool{}
		for j, q := range t.Questions {
			text := strings.TrimSpace(q.Text)
			if text == "" {
				errs = append(errs, fmt.Errorf("theme %q question %d: empty text", name, j+1))
				continue
			}
			if texts[text] {
				errs = append(errs, fmt.Errorf("theme %q: duplicate question %q", name, text))
			}
			texts[text] = true
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("survey: invalid catalog: %w", err)
	}
	return nil
}

// Materialize assigns ids and order indexes, producing the rows Seed writes.
func (c Catalog) Materialize() []Theme {
	out := make([]Theme, 0, len(c.Themes))
	qOrder := 0
	for i, ts := range c.Themes {
		name := strings.TrimSpace(ts.Name)
		t := Theme{
			ID:          ThemeID(name),
			Name:        name,
			Description: strings.TrimSpace(ts.Description),
			OrderIndex:  i + 1,
			Weight:      ts.Weight,
		}
		for _, qs := range ts.Questions {
			qOrder++
			text := strings.TrimSpace(qs.Text)
			t.Questions = append(t.Questions, Question{
				ID:            QuestionID(name, text),
				ThemeID:       t.ID,
				Text:          text,
				HelpText:      strings.TrimSpace(qs.Help),
				OrderIndex:    qOrder,
				ReverseScored: qs.Reverse,
			})
		}
		out = append(out, t)
	}
	return out
}

func ThemeID(name string) string {
	return uuid.NewSHA1(idSpace, []byte("theme\x00"+name)).String()
}

func QuestionID(themeName, text string) string {
	return uuid.NewSHA1(idSpace, []byte("question\x00"+themeName+"\x00"+text)).String()
}
