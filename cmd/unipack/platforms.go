// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/toolchain"
)

// platformsCmd lists the platforms the package manifest declares.
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the target platforms declared in Package.swift",
	Long: `List the platforms a release run would build for.

The catalog is read from Package.swift via 'swift package dump-package'.
The host platform (macos) is excluded, since it is never cross-packaged
into the universal bundle.`,
	Args: cobra.NoArgs,
	RunE: runPlatforms,
}

func runPlatforms(cmd *cobra.Command, _ []string) error {
	catalog := manifest.NewCatalog(toolchain.NewExecRunner(), cfg.Swift, workDir, newLogger())

	platforms, err := catalog.Resolve(cmd.Context())
	if err != nil {
		renderPipelineError(err)
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(TitleStyle.Render("Target Platforms"))
	for _, p := range platforms {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
