package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Score is a score that the API may send as a number, a string or null.
// A non-numeric string is kept verbatim in Raw.
type Score struct {
	Value float64
	Valid bool
	Raw   string
}

// UnmarshalJSON accepts numbers, strings, empty strings and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to decode score string: %w", err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = Score{}
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			*s = Score{Valid: true, Raw: raw}
			return nil
		}
		*s = Score{Value: value, Valid: true}
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to decode score: %w", err)
	}
	*s = Score{Value: value, Valid: true}

	return nil
}

// String formats the score for display; a missing score renders as "-".
func (s Score) String() string {
	if !s.Valid {
		return "-"
	}
	if s.Raw != "" {
		return s.Raw
	}

	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// ScoreRecord is a raw score record. The general routes send "nilai",
// the ST route sends "nilaiST" for the same value.
type ScoreRecord struct {
	Name      string `json:"nama"`
	StudentID string `json:"nisn"`
	Nilai     Score  `json:"nilai"`
	NilaiST   Score  `json:"nilaiST"`
}

// Normalized returns the record's score, preferring "nilai" over "nilaiST".
func (r ScoreRecord) Normalized() Score {
	if r.Nilai.Valid {
		return r.Nilai
	}

	return r.NilaiST
}

// Conflicting reports whether both score fields are set to different values.
func (r ScoreRecord) Conflicting() bool {
	return r.Nilai.Valid && r.NilaiST.Valid && r.Nilai != r.NilaiST
}

// ScoreRow is a normalized score record ready for display.
type ScoreRow struct {
	Ordinal   int
	Name      string
	StudentID string
	Score     Score
}

// Key returns the ordinal, the only identity a score row has on the client.
func (r ScoreRow) Key() string { return strconv.Itoa(r.Ordinal) }
