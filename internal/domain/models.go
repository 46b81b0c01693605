package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Game struct {
	ID          GameID     `json:"id"`
	Title       string     `json:"title"`
	Image       string     `json:"image"`
	Rating      float64    `json:"rating"`
	Playtime    int        `json:"playtime"` // minutes
	Players     Players    `json:"players"`
	Genre       Genres     `json:"genre"`
	Difficulty  string     `json:"difficulty"`
	Language    string     `json:"language"`
	Age         FlexString `json:"age"`
	Location    FlexString `json:"location"`
	Shelf       FlexString `json:"shelf"`
	Description string     `json:"description"`
	Pinned      bool       `json:"pinned"`
}

type Players struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n players fit the inclusive [Min, Max] range.
func (p Players) Contains(n int) bool {
	return n >= p.Min && n <= p.Max
}

// GameID is the stable identifier of a game. The upstream feed has used both
// numbers and strings, so either decodes into the canonical string form.
type GameID string

func (id *GameID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = GameID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("game id must be a string or number: %w", err)
	}
	*id = GameID(n.String())
	return nil
}

func (id GameID) String() string { return string(id) }

// Genres holds the genre tags of a game. The feed encodes them either as an
// array or as one string with several tags joined by separators.
type Genres []string

func isGenreSeparator(r rune) bool {
	return r == ',' || r == '/' || r == '&' || r == '|'
}

func (g *Genres) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = ParseGenres(s)
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("genre must be a string or an array of strings: %w", err)
	}
	out := make(Genres, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	*g = out
	return nil
}

// ParseGenres splits a joined genre string into trimmed, non-empty tags.
func ParseGenres(s string) Genres {
	parts := strings.FieldsFunc(s, isGenreSeparator)
	out := make(Genres, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (g Genres) String() string {
	return strings.Join(g, ", ")
}

// FlexString is free text that the feed sometimes sends as a number (age, shelf).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a string or number: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string { return string(f) }
