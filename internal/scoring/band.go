package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Band is a performance category derived from a mean score.
type Band string

const (
	BandNone             Band = ""
	BandNeedsImprovement Band = "needs_improvement"
	BandBelowAverage     Band = "below_average"
	BandModerate         Band = "moderate"
	BandStrong           Band = "strong"
)

// Upper bounds are inclusive and checked in ascending order.
var bandThresholds = []struct {
	upTo float64
	band Band
}{
	{2.0, BandNeedsImprovement},
	{3.0, BandBelowAverage},
	{4.0, BandModerate},
}

// Classify maps a mean to its band. ok=false yields BandNone.
func Classify(mean float64, ok bool) Band {
	if !ok {
		return BandNone
	}
	for _, t := range bandThresholds {
		if mean <= t.upTo {
			return t.band
		}
	}
	return BandStrong
}

// ParseBand accepts the wire form of a band; the empty string is BandNone.
func ParseBand(s string) (Band, error) {
	switch b := Band(s); b {
	case BandNone, BandNeedsImprovement, BandBelowAverage, BandModerate, BandStrong:
		return b, nil
	default:
		return BandNone, fmt.Errorf("scoring: unknown performance band %q", s)
	}
}

// Label is the human readable form, e.g. "Needs Improvement".
func (b Band) Label() string {
	if b == BandNone {
		return "N/A"
	}
	words := strings.Split(string(b), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Color is the report colour for the band.
func (b Band) Color() string {
	switch b {
	case BandNeedsImprovement:
		return "#E53E3E"
	case BandBelowAverage:
		return "#ED8936"
	case BandModerate:
		return "#ECC94B"
	case BandStrong:
		return "#48BB78"
	default:
		return "#718096"
	}
}

// MarshalJSON encodes BandNone as null.
func (b Band) MarshalJSON() ([]byte, error) {
	if b == BandNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(b))
}

func (b *Band) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = BandNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBand(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
