// =============================================================================
// Inventory Ledger Splitter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the run
// configuration. A configuration file is optional: every setting has a
// default that reproduces the canonical export layout, and command line
// flags override whatever the file says.
//
// CONFIGURATION SECTIONS:
//   output_dir    : Root directory of the export tree
//   clean_output  : Remove the output root before exporting
//   ledger        : How the input ledger is read (mode, columns, markers)
//   layout        : How leaf files are written (owner column, trailing field)
//   report        : Optional summary file
//   log           : Logger level and encoding
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Ledger modes.
const (
	// ModeLocation groups by location path only. The first ledger row is a
	// header and is skipped.
	ModeLocation = "location"

	// ModeOwner groups by custodian first. Custodian scopes are opened by
	// marker rows; rows before the first marker are dropped.
	ModeOwner = "owner"
)

// Owner column sources.
const (
	// OwnerColumnNone leaves the owner field of every item record empty.
	OwnerColumnNone = "none"

	// OwnerColumnScopeCustodian fills the owner field with the custodian
	// of the leaf's scope (empty in location mode).
	OwnerColumnScopeCustodian = "scope_custodian"
)

// SupportedEncodings lists the ledger encodings the reader can decode.
var SupportedEncodings = []string{"UTF-8", "windows-1250", "ISO-8859-2"}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete run configuration.
type Config struct {
	// OutputDir is the root of the export tree.
	// Default: "./out"
	OutputDir string `yaml:"output_dir"`

	// CleanOutput removes OutputDir before exporting, so that leaves which
	// no longer exist in the ledger do not survive a regeneration.
	// Default: false
	CleanOutput bool `yaml:"clean_output"`

	// Ledger contains settings for reading the input ledger.
	Ledger LedgerSettings `yaml:"ledger"`

	// Layout contains settings for the leaf file record layout.
	Layout LayoutSettings `yaml:"layout"`

	// Report contains settings for the run report.
	Report ReportSettings `yaml:"report"`

	// Log contains logger settings.
	Log LogSettings `yaml:"log"`
}

// LedgerSettings contains settings for reading the ledger.
type LedgerSettings struct {
	// Mode is either "location" or "owner".
	// Default: "location"
	Mode string `yaml:"mode"`

	// Encoding is the character encoding of a CSV ledger.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// Sheet selects the worksheet of an XLSX ledger.
	// Default: "" (the first sheet)
	Sheet string `yaml:"sheet"`

	// CodeColumn, NameColumn and LocationColumn are 0-based column indexes.
	// Defaults: 0, 1, 5
	CodeColumn     int `yaml:"code_column"`
	NameColumn     int `yaml:"name_column"`
	LocationColumn int `yaml:"location_column"`

	// HeaderSentinel marks a repeated column header inside the ledger.
	// Any row whose location field contains it is skipped.
	// Default: "Lokalita"
	HeaderSentinel string `yaml:"header_sentinel"`

	// MarkerPrefix opens a custodian scope when column 0 starts with it
	// (compared case-insensitively after trimming).
	// Default: "odpovědná osoba:"
	MarkerPrefix string `yaml:"marker_prefix"`

	// MarkerAliases are misspellings of MarkerPrefix found in real ledgers.
	// Default: ["odpovědna osoba:"]
	MarkerAliases []string `yaml:"marker_aliases"`

	// BoilerplateRows is the number of rows discarded after every marker.
	// Default: 2
	BoilerplateRows int `yaml:"boilerplate_rows"`
}

// LayoutSettings contains settings for the exported record layout.
type LayoutSettings struct {
	// IncludeTrailingEmptyColumn appends one empty field to every record.
	// Default: false
	IncludeTrailingEmptyColumn bool `yaml:"include_trailing_empty_column"`

	// OwnerColumnSource is "none" or "scope_custodian".
	// Default: "scope_custodian"
	OwnerColumnSource string `yaml:"owner_column_source"`

	// CRLF terminates records with "\r\n" instead of "\n".
	// Default: false
	CRLF bool `yaml:"crlf"`

	// ASCIIPaths strips diacritics from directory and file names.
	// File contents are never altered.
	// Default: false
	ASCIIPaths bool `yaml:"ascii_paths"`
}

// ReportSettings contains settings for the run report.
type ReportSettings struct {
	// SummaryFile, when set, receives a plain-text copy of the run summary.
	SummaryFile string `yaml:"summary_file"`
}

// LogSettings contains logger settings.
type LogSettings struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Encoding is "console" or "json".
	// Default: "console"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		OutputDir: "./out",
		Ledger: LedgerSettings{
			Mode:            ModeLocation,
			Encoding:        "UTF-8",
			CodeColumn:      0,
			NameColumn:      1,
			LocationColumn:  5,
			HeaderSentinel:  "Lokalita",
			MarkerPrefix:    "odpovědná osoba:",
			MarkerAliases:   []string{"odpovědna osoba:"},
			BoilerplateRows: 2,
		},
		Layout: LayoutSettings{
			OwnerColumnSource: OwnerColumnScopeCustodian,
		},
		Log: LogSettings{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into a populated struct so keys absent from the file keep
	// their defaults (including the legitimate zero column index).
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file
// does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(configPath)
}

// applyDefaults restores defaults for string settings that a file
// explicitly blanked out.
func applyDefaults(config *Config) {
	defaults := Default()

	if config.OutputDir == "" {
		config.OutputDir = defaults.OutputDir
	}
	if config.Ledger.Mode == "" {
		config.Ledger.Mode = defaults.Ledger.Mode
	}
	if config.Ledger.Encoding == "" {
		config.Ledger.Encoding = defaults.Ledger.Encoding
	}
	if config.Ledger.HeaderSentinel == "" {
		config.Ledger.HeaderSentinel = defaults.Ledger.HeaderSentinel
	}
	if config.Ledger.MarkerPrefix == "" {
		config.Ledger.MarkerPrefix = defaults.Ledger.MarkerPrefix
	}
	if config.Layout.OwnerColumnSource == "" {
		config.Layout.OwnerColumnSource = defaults.Layout.OwnerColumnSource
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
	if config.Log.Encoding == "" {
		config.Log.Encoding = defaults.Log.Encoding
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every setting and returns an error wrapping
// ErrInvalidConfig for the first problem found.
func (c *Config) Validate() error {
	switch c.Ledger.Mode {
	case ModeLocation, ModeOwner:
	default:
		return invalid("ledger.mode must be %q or %q, got %q", ModeLocation, ModeOwner, c.Ledger.Mode)
	}

	if !isSupportedEncoding(c.Ledger.Encoding) {
		return invalid("ledger.encoding %q is not one of %s", c.Ledger.Encoding, strings.Join(SupportedEncodings, ", "))
	}

	columns := map[string]int{
		"ledger.code_column":     c.Ledger.CodeColumn,
		"ledger.name_column":     c.Ledger.NameColumn,
		"ledger.location_column": c.Ledger.LocationColumn,
	}
	for name, index := range columns {
		if index < 0 {
			return invalid("%s must not be negative, got %d", name, index)
		}
	}

	if c.Ledger.BoilerplateRows < 0 {
		return invalid("ledger.boilerplate_rows must not be negative, got %d", c.Ledger.BoilerplateRows)
	}

	switch c.Layout.OwnerColumnSource {
	case OwnerColumnNone, OwnerColumnScopeCustodian:
	default:
		return invalid("layout.owner_column_source must be %q or %q, got %q",
			OwnerColumnNone, OwnerColumnScopeCustodian, c.Layout.OwnerColumnSource)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}

	switch c.Log.Encoding {
	case "console", "json":
	default:
		return invalid("log.encoding must be console or json, got %q", c.Log.Encoding)
	}

	return nil
}

// OwnerAware reports whether the ledger is read in owner mode.
func (c *Config) OwnerAware() bool {
	return c.Ledger.Mode == ModeOwner
}

func isSupportedEncoding(name string) bool {
	for _, enc := range SupportedEncodings {
		if strings.EqualFold(enc, name) {
			return true
		}
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
