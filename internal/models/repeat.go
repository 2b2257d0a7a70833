package models

import (
	"encoding/json"
	"fmt"
)

// RepeatKind tags the RepeatCount union.
type RepeatKind int

const (
	RepeatFixed RepeatKind = iota
	RepeatRandom
)

// RepeatCount is Fixed{Count} or Random{Min, Max}.
type RepeatCount struct {
	Kind  RepeatKind
	Count int
	Min   int
	Max   int
}

// FixedRepeat returns a fixed repeat count.
func FixedRepeat(n int) RepeatCount { return RepeatCount{Kind: RepeatFixed, Count: n} }

// RandomRepeat returns a ranged random repeat count.
func RandomRepeat(min, max int) RepeatCount {
	return RepeatCount{Kind: RepeatRandom, Min: min, Max: max}
}

type repeatCountJSON struct {
	Type  string   `json:"type,omitempty"`
	Count *float64 `json:"count,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func (r RepeatCount) MarshalJSON() ([]byte, error) {
	if r.Kind == RepeatRandom {
		mn, mx := float64(r.Min), float64(r.Max)
		return json.Marshal(repeatCountJSON{Type: "random", Min: &mn, Max: &mx})
	}
	c := float64(r.Count)
	return json.Marshal(repeatCountJSON{Type: "fixed", Count: &c})
}

// UnmarshalJSON collapses every accepted shape into the tagged union:
// a bare number, {"type":"fixed","count":n}, {"type":"random","min":a,"max":b}
// and the untyped legacy objects {"count":n} or {"min":a,"max":b}.
func (r *RepeatCount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = FixedRepeat(int(n))
		return nil
	}

	var raw repeatCountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("repeatCount: %w", err)
	}

	switch raw.Type {
	case "random":
		*r = RandomRepeat(intOr(raw.Min, 1), intOr(raw.Max, intOr(raw.Min, 1)))
	case "fixed":
		*r = FixedRepeat(intOr(raw.Count, 1))
	case "":
		if raw.Count == nil && (raw.Min != nil || raw.Max != nil) {
			*r = RandomRepeat(intOr(raw.Min, 1), intOr(raw.Max, intOr(raw.Min, 1)))
		} else {
			*r = FixedRepeat(intOr(raw.Count, 1))
		}
	default:
		return fmt.Errorf("repeatCount: unknown type %q", raw.Type)
	}
	return nil
}

func intOr(v *float64, def int) int {
	if v == nil {
		return def
	}
	return int(*v)
}
