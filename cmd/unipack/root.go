// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unipack/unipack/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// workDir overrides the Swift package root
	workDir string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "unipack",
		Short: "Universal XCFramework release builder",
		Long: TitleStyle.Render("unipack") + SubtitleStyle.Render(" - Universal XCFramework release builder") + `

unipack assembles a single multi-platform XCFramework out of per-platform
xcodebuild archives. It reads the target platforms from your Package.swift,
archives each platform and its simulator with library evolution enabled,
and merges everything (including debug symbols) into one distributable
bundle.

` + SubtitleStyle.Render("Typical usage:") + `
  1. cd into your Swift package
  2. Run: unipack release <LibraryName>
  3. Ship release/<LibraryName>.xcframework

` + SubtitleStyle.Render("Examples:") + `
  unipack release MyLib             Build the universal bundle for MyLib
  unipack release MyLib --jobs 4    Archive platforms in parallel
  unipack release MyLib --dry-run   Show the toolchain calls without running
  unipack platforms                 List the platforms Package.swift declares`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/unipack/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "Swift package root (default is the current directory)")

	// Add subcommands
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(platformsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		// Surface config problems but keep going on defaults.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
		loaded = &config.Config{}
	}
	cfg = loaded

	if cfg.Verbose {
		verbose = true
	}
}

// newLogger creates the CLI logger, honoring --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "unipack",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
