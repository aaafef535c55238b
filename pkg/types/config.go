// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConverterBackend identifies the external conversion facility.
type ConverterBackend string

const (
	BackendSoffice   ConverterBackend = "soffice"
	BackendScript    ConverterBackend = "script"
	BackendContainer ConverterBackend = "container"
	BackendGotenberg ConverterBackend = "gotenberg"
)

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deck-merger/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConverterConfig holds settings for the presentation conversion stage.
type ConverterConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the conversion tool: soffice, script, container, or gotenberg.
	Backend ConverterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// SofficePath is the LibreOffice binary (default "soffice", looked up on PATH).
	SofficePath string `json:"soffice_path" yaml:"soffice_path" mapstructure:"soffice_path"`

	// ScriptHost is the scripting host binary for the script backend (default "cscript").
	ScriptHost string `json:"script_host" yaml:"script_host" mapstructure:"script_host"`

	// ScriptPath is the conversion script run by the scripting host. The
	// script receives the presentation path and writes <name>.pdf next to it.
	ScriptPath string `json:"script_path" yaml:"script_path" mapstructure:"script_path"`

	// ContainerImage is the LibreOffice image used by the container backend.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`

	// GotenbergURL is the base URL of a Gotenberg service (e.g. "http://localhost:3000").
	GotenbergURL string `json:"gotenberg_url" yaml:"gotenberg_url" mapstructure:"gotenberg_url"`

	// PollInterval is the delay between checks for the converted file (default 500ms).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// WaitTimeout is the ceiling after which a conversion is reported failed (default 30s).
	WaitTimeout time.Duration `json:"wait_timeout" yaml:"wait_timeout" mapstructure:"wait_timeout"`
}

// ContentsConfig controls the generated contents section.
type ContentsConfig struct {
	// Title heads the first contents page or slide (default "Contents").
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// ContinuedTitle heads every following contents page (default "Contents (continued)").
	ContinuedTitle string `json:"continued_title" yaml:"continued_title" mapstructure:"continued_title"`

	// PagesLabel and StartLabel are the captions written on every contents line.
	PagesLabel string `json:"pages_label" yaml:"pages_label" mapstructure:"pages_label"`
	StartLabel string `json:"start_label" yaml:"start_label" mapstructure:"start_label"`

	// FontPath is an optional UTF-8 TrueType font for the PDF contents,
	// needed for titles outside the Latin-1 range.
	FontPath string `json:"font_path" yaml:"font_path" mapstructure:"font_path"`

	// FontDirs are searched for a CJK TrueType font, before the platform
	// font directories, when FontPath is empty and a title needs one.
	FontDirs []string `json:"font_dirs" yaml:"font_dirs" mapstructure:"font_dirs"`

	// SlideFont is the typeface written into generated contents slides.
	SlideFont string `json:"slide_font" yaml:"slide_font" mapstructure:"slide_font"`

	// LinesPerSlide is the number of contents lines on one slide (default 10).
	LinesPerSlide int `json:"lines_per_slide" yaml:"lines_per_slide" mapstructure:"lines_per_slide"`
}

// OutputConfig controls merged output naming.
type OutputConfig struct {
	// LabelPresets are the labels offered by --preset (1-based).
	LabelPresets []string `json:"label_presets" yaml:"label_presets" mapstructure:"label_presets"`

	// DeckLabel is the default label for merged presentations.
	DeckLabel string `json:"deck_label" yaml:"deck_label" mapstructure:"deck_label"`
}

// Config groups every setting read from the config file and environment.
type Config struct {
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Contents  ContentsConfig  `json:"contents" yaml:"contents" mapstructure:"contents"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`

	// StateDir holds settings.yaml and history.db
	// (default $XDG_STATE_HOME/deck-merger).
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`
}
