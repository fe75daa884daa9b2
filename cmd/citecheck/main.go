// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citecheck CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/logging"
	"github.com/pdiddy/citecheck/internal/secrets"
	"github.com/pdiddy/citecheck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the configuration resolved from defaults, the config file, and
// key files; commands read it after PersistentPreRunE has run.
var cfg types.Config

// logger is shared by all commands; main syncs it on exit.
var logger *zap.Logger

// rootCmd is the base command for the citecheck CLI.
var rootCmd = &cobra.Command{
	Use:   "citecheck",
	Short: "Verify BibTeX bibliographies against academic data sources",
	Long: `citecheck checks the entries of a BibTeX bibliography against academic
data sources (arXiv, CrossRef, Semantic Scholar, DBLP, OpenAlex). Each entry
is resolved through a configurable sequence of identifier lookups and title
searches; the fetched metadata is compared field by field against the entry,
and mismatches, unverifiable entries, and likely duplicates are reported.

Subcommands: verify runs the full check, duplicates finds repeated entries
without touching the network, and config init writes a starting
configuration file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c := types.DefaultConfig()
		if viper.IsSet("workflow") {
			// A configured workflow replaces the default instead of
			// merging into it element by element.
			c.Workflow = nil
		}
		if err := viper.Unmarshal(&c, withYAMLTags); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		secrets.Apply(&c, s)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		l, err := logging.New(c.Log)
		if err != nil {
			return err
		}
		cfg = c
		logger = l
		return nil
	},
}

// withYAMLTags makes viper decode into the yaml-tagged fields of
// types.Config instead of looking for mapstructure tags.
func withYAMLTags(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citecheck.yaml or ~/.config/citecheck/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citecheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citecheck"))
		}
	}

	viper.SetEnvPrefix("CITECHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}
