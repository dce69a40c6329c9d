// Package config handles settings loading from JSON, TOML or YAML files and environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings is the root settings structure. Section names follow the settings file.
type Settings struct {
	Sec      SecretsConfig  `json:"sec" toml:"sec" yaml:"sec"`
	ReadOnly EndpointConfig `json:"READ_ONLY" toml:"READ_ONLY" yaml:"READ_ONLY"`
	Info     InfoConfig     `json:"info" toml:"info" yaml:"info"`
	Msg      MessageConfig  `json:"msg" toml:"msg" yaml:"msg"`
	Notify   NotifyConfig   `json:"notify" toml:"notify" yaml:"notify"`
	Status   StatusConfig   `json:"status" toml:"status" yaml:"status"`
}

// SecretsConfig holds credentials and the ledger location.
type SecretsConfig struct {
	DBPath string `json:"db_path" toml:"db_path" yaml:"db_path"`
	APIKey string `json:"api_key" toml:"api_key" yaml:"api_key"`
	User   string `json:"user" toml:"user" yaml:"user"`
	Pass   string `json:"pass" toml:"pass" yaml:"pass"`
}

// EndpointConfig holds the game endpoints and send pacing.
type EndpointConfig struct {
	Login   string `json:"login" toml:"login" yaml:"login"`
	Msg     string `json:"msg" toml:"msg" yaml:"msg"`
	Nations string `json:"nations" toml:"nations" yaml:"nations"`
	// Delay is the pause before each message, in seconds.
	Delay        int     `json:"delay" toml:"delay" yaml:"delay"`
	RequestRate  float64 `json:"request_rate" toml:"request_rate" yaml:"request_rate"`
	RequestBurst int     `json:"request_burst" toml:"request_burst" yaml:"request_burst"`
}

// InfoConfig holds the eligibility rules and round frequency.
type InfoConfig struct {
	// Alliance is the operator's own alliance name. Informational only.
	Alliance       string       `json:"alliance" toml:"alliance" yaml:"alliance"`
	TargetAlliance AllianceList `json:"target_alliance" toml:"target_alliance" yaml:"target_alliance"`
	MinCities      int          `json:"min_cities" toml:"min_cities" yaml:"min_cities"`
	MaxInactive    int          `json:"max_inactive" toml:"max_inactive" yaml:"max_inactive"`
	Exclude        IDList       `json:"exclude" toml:"exclude" yaml:"exclude"`
	ContactAgain   int          `json:"contact_again" toml:"contact_again" yaml:"contact_again"`
	Frequency      int          `json:"frequency" toml:"frequency" yaml:"frequency"`
}

// MessageConfig holds the message templates.
type MessageConfig struct {
	Subject string `json:"subject" toml:"subject" yaml:"subject"`
	Content string `json:"content" toml:"content" yaml:"content"`
	// Sanitize strips markup from nation-supplied values before substitution.
	Sanitize bool `json:"sanitize" toml:"sanitize" yaml:"sanitize"`
}

// NotifyConfig holds optional Discord round-summary settings.
type NotifyConfig struct {
	DiscordToken   string `json:"discord_token" toml:"discord_token" yaml:"discord_token"`
	DiscordChannel string `json:"discord_channel" toml:"discord_channel" yaml:"discord_channel"`
}

// StatusConfig holds the optional status API listen address.
type StatusConfig struct {
	Listen string `json:"listen" toml:"listen" yaml:"listen"`
}

// DefaultSettings returns settings with the game endpoints and pacing filled in.
func DefaultSettings() *Settings {
	return &Settings{
		Sec: SecretsConfig{
			DBPath: constants.DefaultDBPath,
		},
		ReadOnly: EndpointConfig{
			Login:        constants.DefaultLoginEndpoint,
			Msg:          constants.DefaultMessageEndpoint,
			Nations:      constants.DefaultNationsEndpoint,
			Delay:        constants.DefaultDelay,
			RequestRate:  constants.DefaultRequestRate,
			RequestBurst: constants.DefaultRequestBurst,
		},
		Info: InfoConfig{
			TargetAlliance: AllianceList{constants.NoAlliance},
			ContactAgain:   constants.DefaultContactAgain,
			Frequency:      constants.DefaultFrequency,
		},
	}
}

// Load reads settings from path, applies environment overrides and validates the result.
// A missing file is an error: the bot cannot run without credentials and templates.
func Load(path string) (*Settings, error) {
	s, err := Read(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(s)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Read decodes the settings file over the defaults without validating it.
// The editor uses this so incomplete files can still be opened and fixed.
func Read(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s := DefaultSettings()
	switch formatOf(path) {
	case formatTOML:
		if _, err := toml.Decode(string(data), s); err != nil {
			return nil, fmt.Errorf("decode toml settings: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode yaml settings: %w", err)
		}
	default:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode json settings: %w", err)
		}
	}
	return s, nil
}

// Save writes settings to path in the format implied by its extension.
// The file holds credentials, so it is created owner-only.
func Save(path string, s *Settings) error {
	var buf bytes.Buffer
	switch formatOf(path) {
	case formatTOML:
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return fmt.Errorf("encode toml settings: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml settings: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml settings: %w", err)
		}
	default:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json settings: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks required keys and ranges. All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if strings.TrimSpace(s.Sec.DBPath) == "" {
		fail("sec.db_path is required")
	}
	if s.ReadOnly.Nations == "" {
		fail("READ_ONLY.nations is required")
	}
	if s.ReadOnly.Login == "" {
		fail("READ_ONLY.login is required")
	}
	if s.ReadOnly.Msg == "" {
		fail("READ_ONLY.msg is required")
	}
	if s.ReadOnly.Delay < 0 {
		fail("READ_ONLY.delay must not be negative, got %d", s.ReadOnly.Delay)
	}
	if s.ReadOnly.RequestRate < 0 {
		fail("READ_ONLY.request_rate must not be negative, got %g", s.ReadOnly.RequestRate)
	}
	if len(s.Info.TargetAlliance) == 0 {
		fail("info.target_alliance must name at least one alliance (use \"None\" for unaligned nations)")
	}
	if s.Info.MinCities < 0 {
		fail("info.min_cities must not be negative, got %d", s.Info.MinCities)
	}
	if s.Info.MaxInactive < 0 {
		fail("info.max_inactive must not be negative, got %d", s.Info.MaxInactive)
	}
	if s.Info.ContactAgain < 0 {
		fail("info.contact_again must not be negative, got %d", s.Info.ContactAgain)
	}
	if s.Info.Frequency <= 0 {
		fail("info.frequency must be positive, got %d", s.Info.Frequency)
	}
	if (s.Notify.DiscordToken == "") != (s.Notify.DiscordChannel == "") {
		fail("notify.discord_token and notify.discord_channel must be set together")
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy, so editors can work on settings without touching a loaded value.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Info.TargetAlliance = append(AllianceList(nil), s.Info.TargetAlliance...)
	c.Info.Exclude = append(IDList(nil), s.Info.Exclude...)
	return &c
}

// Delay returns the pause before each message.
func (s *Settings) Delay() time.Duration {
	return time.Duration(s.ReadOnly.Delay) * time.Second
}

// Frequency returns the pause between rounds.
func (s *Settings) Frequency() time.Duration {
	return time.Duration(s.Info.Frequency) * time.Second
}

// ContactAgain returns how long a contacted nation stays ineligible.
func (s *Settings) ContactAgain() time.Duration {
	return time.Duration(s.Info.ContactAgain) * 24 * time.Hour
}

// NotifyEnabled reports whether Discord notifications are configured.
func (s *Settings) NotifyEnabled() bool {
	return s.Notify.DiscordToken != "" && s.Notify.DiscordChannel != ""
}

// applyEnvOverrides applies environment variable overrides to the settings.
func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("RECRUITER_DB_PATH"); v != "" {
		s.Sec.DBPath = v
	}

	if v := os.Getenv("RECRUITER_API_KEY"); v != "" {
		s.Sec.APIKey = v
	}

	if v := os.Getenv("RECRUITER_USER"); v != "" {
		s.Sec.User = v
	}

	if v := os.Getenv("RECRUITER_PASS"); v != "" {
		s.Sec.Pass = v
	}

	if v := os.Getenv("RECRUITER_FREQUENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Info.Frequency = n
		}
	}

	if v := os.Getenv("RECRUITER_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.ReadOnly.Delay = n
		}
	}

	if v := os.Getenv("RECRUITER_STATUS_LISTEN"); v != "" {
		s.Status.Listen = v
	}

	if v := os.Getenv("RECRUITER_DISCORD_TOKEN"); v != "" {
		s.Notify.DiscordToken = v
	}
}

type format int

const (
	formatJSON format = iota
	formatTOML
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// DataDir returns the path to the recruiter data directory (~/.pnw-recruiter).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.DataDirName), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
