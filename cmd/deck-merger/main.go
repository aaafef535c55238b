// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deck-merger CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-merger/internal/deck"
	"github.com/pdiddy/deck-merger/internal/naming"
	"github.com/pdiddy/deck-merger/internal/secrets"
	"github.com/pdiddy/deck-merger/internal/settings"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "deck-merger/0.1"
)

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// cfg is the effective configuration after defaults, file and environment.
	cfg types.Config

	logger = slog.Default()

	envReplacer = strings.NewReplacer(".", "_")
)

// rootCmd is the base command for the deck-merger CLI.
var rootCmd = &cobra.Command{
	Use:   "deck-merger",
	Short: "Merge presentations into one PDF or one deck with a contents section",
	Long: `deck-merger combines PowerPoint presentations from a working folder.

The pdf command converts each selected presentation to PDF through an
external converter (LibreOffice, a Windows script host, a LibreOffice
container, or a Gotenberg service) and concatenates the results behind a
generated contents section listing page counts and start pages. The deck
command merges the presentations themselves into one .pptx with contents
slides at the front.

Outputs are named <YYYYMMDD><label> and never overwrite an existing file.
The last working folder is remembered between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}

		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deck-merger.yaml or ~/.config/deck-merger/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deck-merger")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deck-merger"))
		}
	}

	viper.SetEnvPrefix("DECK_MERGER")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	dc := deck.DefaultContentsOptions()

	v.SetDefault("converter.backend", string(types.BackendSoffice))
	v.SetDefault("converter.timeout", defaultTimeout)
	v.SetDefault("converter.user_agent", defaultUserAgent)
	v.SetDefault("converter.soffice_path", "soffice")
	v.SetDefault("converter.script_host", "cscript")
	v.SetDefault("converter.script_path", "")
	v.SetDefault("converter.container_image", "")
	v.SetDefault("converter.gotenberg_url", "http://localhost:3000")
	v.SetDefault("converter.poll_interval", 500*time.Millisecond)
	v.SetDefault("converter.wait_timeout", 30*time.Second)

	v.SetDefault("contents.title", dc.Title)
	v.SetDefault("contents.continued_title", dc.ContinuedTitle)
	v.SetDefault("contents.pages_label", dc.Labels.Pages)
	v.SetDefault("contents.start_label", dc.Labels.Start)
	v.SetDefault("contents.font_path", "")
	v.SetDefault("contents.font_dirs", []string{})
	v.SetDefault("contents.slide_font", "")
	v.SetDefault("contents.lines_per_slide", dc.LinesPerSlide)

	v.SetDefault("output.label_presets", []string{})
	v.SetDefault("output.deck_label", naming.DefaultLabel)

	v.SetDefault("state_dir", settings.DefaultStateDir())
}

// loadConfig applies defaults and decodes v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v)
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Contents.LinesPerSlide < 1 {
		return types.Config{}, fmt.Errorf("contents.lines_per_slide must be at least 1, got %d", c.Contents.LinesPerSlide)
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
