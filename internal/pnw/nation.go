// Package pnw talks to the Politics & War nation API and its web session endpoints.
package pnw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// Nation is one entry of the nation listing. It is read-only for the rest of the program.
type Nation struct {
	ID                 int64   `json:"nationid"`
	Name               string  `json:"nation"`
	Leader             string  `json:"leader"`
	Alliance           string  `json:"alliance"`
	Cities             int     `json:"cities"`
	MinutesSinceActive int     `json:"minutessinceactive"`
	Score              float64 `json:"score"`
	Infrastructure     float64 `json:"infrastructure"`
	Color              string  `json:"color"`
}

// The listing is loose about types: ids and counts arrive as numbers or numeric strings,
// and alliance may be a name, a numeric id or null.
type rawNation struct {
	ID                 flexNumber `json:"nationid"`
	Name               string     `json:"nation"`
	Leader             string     `json:"leader"`
	Alliance           flexText   `json:"alliance"`
	Cities             flexNumber `json:"cities"`
	MinutesSinceActive flexNumber `json:"minutessinceactive"`
	Score              flexNumber `json:"score"`
	Infrastructure     flexNumber `json:"infrastructure"`
	Color              string     `json:"color"`
}

func (n *Nation) UnmarshalJSON(data []byte) error {
	var raw rawNation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := raw.ID.Int64()
	if err != nil {
		return fmt.Errorf("nationid: %w", err)
	}
	cities, err := raw.Cities.Int64()
	if err != nil {
		return fmt.Errorf("nation %d cities: %w", id, err)
	}
	inactive, err := raw.MinutesSinceActive.Int64()
	if err != nil {
		return fmt.Errorf("nation %d minutessinceactive: %w", id, err)
	}
	score, err := raw.Score.Float64()
	if err != nil {
		return fmt.Errorf("nation %d score: %w", id, err)
	}
	infra, err := raw.Infrastructure.Float64()
	if err != nil {
		return fmt.Errorf("nation %d infrastructure: %w", id, err)
	}

	*n = Nation{
		ID:                 id,
		Name:               raw.Name,
		Leader:             raw.Leader,
		Alliance:           string(raw.Alliance),
		Cities:             int(cities),
		MinutesSinceActive: int(inactive),
		Score:              score,
		Infrastructure:     infra,
		Color:              raw.Color,
	}
	return nil
}

// flexNumber accepts 12, 12.5, "12" and null (as zero).
type flexNumber string

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexNumber(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexNumber(n)
	return nil
}

func (f flexNumber) Int64() (int64, error) {
	if f == "" {
		return 0, nil
	}
	if i, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return i, nil
	}
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", string(f))
	}
	return int64(v), nil
}

func (f flexNumber) Float64() (float64, error) {
	if f == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", string(f))
	}
	return v, nil
}

// flexText renders any scalar as text; null becomes the no-alliance marker.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = flexText(constants.NoAlliance)
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("alliance: unsupported value %s", string(data))
		}
		*f = flexText(n.String())
	}
	return nil
}
