package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AllianceList is the set of alliance identifiers eligible for contact.
// Entries are compared as text; "None" stands for nations without an alliance.
// Numeric entries in the settings file are accepted and stored as their decimal text.
type AllianceList []string

// Contains reports whether alliance is in the list.
func (l AllianceList) Contains(alliance string) bool {
	for _, a := range l {
		if a == alliance {
			return true
		}
	}
	return false
}

func (l *AllianceList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("target_alliance: %w", err)
	}
	out := make(AllianceList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("target_alliance: entry %s is neither text nor a number", string(r))
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

func (l *AllianceList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("target_alliance: expected a list at line %d", value.Line)
	}
	out := make(AllianceList, 0, len(value.Content))
	for _, n := range value.Content {
		if n.Kind != yaml.ScalarNode {
			return fmt.Errorf("target_alliance: expected a scalar at line %d", n.Line)
		}
		out = append(out, n.Value)
	}
	*l = out
	return nil
}

func (l *AllianceList) UnmarshalTOML(data any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("target_alliance: expected an array, got %T", data)
	}
	out := make(AllianceList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case int64:
			out = append(out, strconv.FormatInt(v, 10))
		default:
			return fmt.Errorf("target_alliance: unsupported entry %v (%T)", v, v)
		}
	}
	*l = out
	return nil
}

// IDList is a set of nation ids. Numeric strings are accepted in the settings file.
type IDList []int64

// Contains reports whether id is in the list.
func (l IDList) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}
	out := make(IDList, 0, len(raw))
	for _, r := range raw {
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			id, err := n.Int64()
			if err != nil {
				return fmt.Errorf("exclude: %w", err)
			}
			out = append(out, id)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return fmt.Errorf("exclude: entry %s is not a nation id", string(r))
		}
		id, err := parseID(s)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

func (l *IDList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("exclude: expected a list at line %d", value.Line)
	}
	out := make(IDList, 0, len(value.Content))
	for _, n := range value.Content {
		id, err := parseID(n.Value)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

func (l *IDList) UnmarshalTOML(data any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("exclude: expected an array, got %T", data)
	}
	out := make(IDList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case int64:
			out = append(out, v)
		case string:
			id, err := parseID(v)
			if err != nil {
				return err
			}
			out = append(out, id)
		default:
			return fmt.Errorf("exclude: unsupported entry %v (%T)", v, v)
		}
	}
	*l = out
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("exclude: %q is not a nation id", s)
	}
	return id, nil
}

// ParseAllianceList parses a comma-separated list as typed into the editor.
func ParseAllianceList(s string) AllianceList {
	var out AllianceList
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseIDList parses a comma-separated list of nation ids as typed into the editor.
func ParseIDList(s string) (IDList, error) {
	var out IDList
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// String renders the list comma-separated, the way the editor shows it.
func (l AllianceList) String() string {
	return strings.Join(l, ", ")
}

// String renders the list comma-separated, the way the editor shows it.
func (l IDList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
