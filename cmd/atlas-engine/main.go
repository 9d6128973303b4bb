// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the atlas-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the atlas-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "atlas-engine",
	Short: "Dataset preparation for the historical city atlas",
	Long: `atlas-engine prepares the population datasets behind the historical city
atlas. It converts the source census spreadsheets into a merged GeoJSON
FeatureCollection, splits oversized collections into deployable parts,
reports dataset statistics, and maintains a queryable SQLite index.

Each preparation stage is a subcommand: preprocess, split, stats, and
index.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./atlas-engine.yaml or ~/.config/atlas-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("atlas-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "atlas-engine"))
		}
	}

	viper.SetEnvPrefix("ATLAS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringFlag reads a string flag, deferring to the config file key when
// the flag was left at its default.
func stringFlag(cmd *cobra.Command, name, key string) string {
	if cmd.Flags().Changed(name) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return viper.GetString(key)
}

// intFlag reads an int flag, deferring to the config file key when the
// flag was left at its default.
func intFlag(cmd *cobra.Command, name, key string) int {
	if cmd.Flags().Changed(name) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return viper.GetInt(key)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
