package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xonecas/pnw-recruiter/internal/config"
)

// fieldKind controls how a typed value is parsed and how the current value is shown.
type fieldKind int

const (
	kindText fieldKind = iota
	kindSecret
	kindInt
	kindBool
	kindAlliances
	kindIDs
)

// field is one editable setting.
type field struct {
	label string
	kind  fieldKind
	get   func(s *config.Settings) string
	set   func(s *config.Settings, v string) error
}

// category is a group of fields opened from the main menu.
type category struct {
	title  string
	fields []field
}

func textField(label string, kind fieldKind, ptr func(s *config.Settings) *string) field {
	return field{
		label: label,
		kind:  kind,
		get:   func(s *config.Settings) string { return *ptr(s) },
		set: func(s *config.Settings, v string) error {
			*ptr(s) = v
			return nil
		},
	}
}

func intField(label string, ptr func(s *config.Settings) *int) field {
	return field{
		label: label,
		kind:  kindInt,
		get:   func(s *config.Settings) string { return strconv.Itoa(*ptr(s)) },
		set: func(s *config.Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%s: %q is not a whole number", label, v)
			}
			*ptr(s) = n
			return nil
		},
	}
}

var categories = []category{
	{
		title: "Secure Details",
		fields: []field{
			textField("Database Path", kindText, func(s *config.Settings) *string { return &s.Sec.DBPath }),
			textField("API Key", kindSecret, func(s *config.Settings) *string { return &s.Sec.APIKey }),
			textField("Username", kindText, func(s *config.Settings) *string { return &s.Sec.User }),
			textField("Password", kindSecret, func(s *config.Settings) *string { return &s.Sec.Pass }),
		},
	},
	{
		title: "Preferences",
		fields: []field{
			textField("Alliance Name", kindText, func(s *config.Settings) *string { return &s.Info.Alliance }),
			{
				label: "Target Alliances",
				kind:  kindAlliances,
				get:   func(s *config.Settings) string { return s.Info.TargetAlliance.String() },
				set: func(s *config.Settings, v string) error {
					list := config.ParseAllianceList(v)
					if len(list) == 0 {
						return errors.New("target alliances: at least one alliance is required")
					}
					s.Info.TargetAlliance = list
					return nil
				},
			},
			intField("Max Inactive (minutes)", func(s *config.Settings) *int { return &s.Info.MaxInactive }),
			intField("Min Cities", func(s *config.Settings) *int { return &s.Info.MinCities }),
			{
				label: "Exclude (nation ids)",
				kind:  kindIDs,
				get:   func(s *config.Settings) string { return s.Info.Exclude.String() },
				set: func(s *config.Settings, v string) error {
					ids, err := config.ParseIDList(v)
					if err != nil {
						return err
					}
					s.Info.Exclude = ids
					return nil
				},
			},
			intField("Contact Again (days)", func(s *config.Settings) *int { return &s.Info.ContactAgain }),
			intField("Frequency (seconds)", func(s *config.Settings) *int { return &s.Info.Frequency }),
			intField("Send Delay (seconds)", func(s *config.Settings) *int { return &s.ReadOnly.Delay }),
		},
	},
	{
		title: "Messages",
		fields: []field{
			textField("Subject", kindText, func(s *config.Settings) *string { return &s.Msg.Subject }),
			textField("Content", kindText, func(s *config.Settings) *string { return &s.Msg.Content }),
			{
				label: "Sanitize (true/false)",
				kind:  kindBool,
				get:   func(s *config.Settings) string { return strconv.FormatBool(s.Msg.Sanitize) },
				set: func(s *config.Settings, v string) error {
					b, err := strconv.ParseBool(strings.ToLower(v))
					if err != nil {
						return fmt.Errorf("sanitize: %q is not true or false", v)
					}
					s.Msg.Sanitize = b
					return nil
				},
			},
		},
	},
}

// display returns the current value as shown next to the input.
func (f field) display(s *config.Settings) string {
	v := f.get(s)
	if f.kind == kindSecret {
		if v == "" {
			return "(not set)"
		}
		return strings.Repeat("•", 8)
	}
	if v == "" {
		return "(empty)"
	}
	return v
}
