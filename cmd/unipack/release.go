// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/unipack/unipack/internal/issue"
	"github.com/unipack/unipack/internal/pipeline"
	"github.com/unipack/unipack/internal/toolchain"
)

var (
	// releaseOutput overrides the published release directory
	releaseOutput string
	// releaseDerivedData overrides the derived-data path
	releaseDerivedData string
	// releaseJobs bounds concurrent archive builds
	releaseJobs int
	// releaseDryRun prints the toolchain invocations without running them
	releaseDryRun bool
	// releaseKeepStaging keeps per-platform intermediates in the output
	releaseKeepStaging bool

	// releaseCmd builds the universal bundle
	releaseCmd = &cobra.Command{
		Use:   "release <library>",
		Short: "Build a universal XCFramework release",
		Long: `Build a universal XCFramework release for the named library.

The command archives every platform declared in Package.swift (plus its
simulator), forces dynamic linkage for the duration of the run, collects
frameworks and debug symbols into a staging tree, merges everything with
xcodebuild -create-xcframework, and publishes the result.

Examples:
  unipack release MyLib
  unipack release MyLib --jobs 4
  unipack release MyLib --output dist --keep-staging
  unipack release MyLib --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runRelease,
	}
)

func init() {
	releaseCmd.Flags().StringVarP(&releaseOutput, "output", "o", "", "release directory (default: release)")
	releaseCmd.Flags().StringVar(&releaseDerivedData, "derived-data", "", "derived-data path (default: .derivedData)")
	releaseCmd.Flags().IntVarP(&releaseJobs, "jobs", "j", 0, "number of concurrent archive builds (default: 1)")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "print the toolchain invocations without running them")
	releaseCmd.Flags().BoolVar(&releaseKeepStaging, "keep-staging", false, "keep per-platform intermediate directories in the output")
}

// pipelineConfig assembles the pipeline configuration from the loaded config
// file with per-flag overrides applied on top.
func pipelineConfig(cmd *cobra.Command, library string) pipeline.Config {
	pcfg := pipeline.Config{
		Library:      library,
		WorkDir:      workDir,
		ManifestPath: cfg.ManifestPath,
		DerivedData:  cfg.DerivedData,
		ArchiveRoot:  cfg.ArchiveRoot,
		StagingRoot:  cfg.StagingRoot,
		ReleaseDir:   cfg.ReleaseDir,
		Jobs:         cfg.Jobs,
		Bitcode:      cfg.Bitcode,
		KeepStaging:  releaseKeepStaging,
		Xcodebuild:   cfg.Xcodebuild,
		Swift:        cfg.Swift,
	}
	if cmd.Flags().Changed("output") {
		pcfg.ReleaseDir = releaseOutput
	}
	if cmd.Flags().Changed("derived-data") {
		pcfg.DerivedData = releaseDerivedData
	}
	if cmd.Flags().Changed("jobs") {
		pcfg.Jobs = releaseJobs
	}
	return pcfg
}

func runRelease(cmd *cobra.Command, args []string) error {
	library := args[0]
	logger := newLogger()

	runner := toolchain.NewExecRunner()
	if verbose {
		runner.Stdout = os.Stdout
		runner.Stderr = os.Stderr
	}

	p := pipeline.New(pipelineConfig(cmd, library), runner, logger)

	if releaseDryRun {
		return runReleaseDryRun(cmd, p)
	}

	fmt.Println(TitleStyle.Render("Release " + library))

	res, err := p.Run(cmd.Context())
	if err != nil {
		renderPipelineError(err)
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println()
	fmt.Printf("%s Universal bundle built in %s\n",
		SuccessStyle.Render("✓"), res.Duration.Round(time.Millisecond))
	fmt.Printf("  Platforms: %v\n", res.Platforms)
	fmt.Printf("  Output: %s\n", PathStyle.Render(res.BundlePath))
	return nil
}

// runReleaseDryRun prints every toolchain invocation a run would issue.
func runReleaseDryRun(cmd *cobra.Command, p *pipeline.Pipeline) error {
	invocations, err := p.Plan(cmd.Context())
	if err != nil {
		renderPipelineError(err)
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(TitleStyle.Render("Dry Run"))
	fmt.Println()
	for _, inv := range invocations {
		fmt.Printf("  %s\n", PathStyle.Render(inv.String()))
	}
	return nil
}

// renderPipelineError prints the styled error line and, when the error kind
// is catalogued, its rendered remediation help.
func renderPipelineError(err error) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())

	if entry := issue.ForError(err); entry != nil {
		if rendered, renderErr := entry.Render("auto"); renderErr == nil {
			fmt.Fprintln(os.Stderr, rendered)
		}
	}
}
