// SPDX-License-Identifier: MPL-2.0

// Package merge fuses the staged per-platform frameworks into one
// universal bundle via a single -create-xcframework invocation.
package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/unipack/unipack/internal/archive"
	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/staging"
	"github.com/unipack/unipack/internal/toolchain"
)

var (
	// ErrMergeFailed indicates the bundling tool reported failure.
	ErrMergeFailed = errors.New("bundle merge failed")
	// ErrIncompletePlatformSet indicates a platform in the catalog has no
	// staged framework at merge time, signalling an earlier silent
	// collection failure.
	ErrIncompletePlatformSet = errors.New("incomplete platform set")
)

// Merger builds and runs the bundling invocation.
type Merger struct {
	runner     toolchain.Runner
	xcodebuild string
	logger     *log.Logger
}

// NewMerger creates a Merger using the given toolchain binary
// (defaults to "xcodebuild").
func NewMerger(runner toolchain.Runner, xcodebuild string, logger *log.Logger) *Merger {
	if xcodebuild == "" {
		xcodebuild = "xcodebuild"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Merger{runner: runner, xcodebuild: xcodebuild, logger: logger}
}

// Invocation builds the -create-xcframework invocation for the staged tree
// without checking or running anything. Used by dry-run output.
func (m *Merger) Invocation(tree staging.Tree, platforms []manifest.Platform, library string) toolchain.Invocation {
	args := []string{"-create-xcframework"}
	for _, p := range platforms {
		args = append(args,
			"-framework", absPath(tree.FrameworkPath(p, archive.VariantDevice, library)),
			"-debug-symbols", absPath(tree.DSYMPath(p, archive.VariantDevice, library)),
		)
		if !archive.HasSimulator(p) {
			continue
		}
		args = append(args,
			"-framework", absPath(tree.FrameworkPath(p, archive.VariantSimulator, library)),
			"-debug-symbols", absPath(tree.DSYMPath(p, archive.VariantSimulator, library)),
		)
	}
	args = append(args, "-output", tree.BundlePath(library))

	return toolchain.Invocation{Name: m.xcodebuild, Args: args}
}

// Merge validates that every expected framework is staged, then runs the
// bundling tool once. On success it returns the merged bundle path.
func (m *Merger) Merge(ctx context.Context, tree staging.Tree, platforms []manifest.Platform, library string) (string, error) {
	for _, p := range platforms {
		for _, v := range archive.Variants {
			if v == archive.VariantSimulator && !archive.HasSimulator(p) {
				continue
			}
			fw := tree.FrameworkPath(p, v, library)
			if _, err := os.Stat(fw); err != nil {
				return "", fmt.Errorf("%w: no staged framework for %s %s at %s",
					ErrIncompletePlatformSet, p, v, fw)
			}
		}
	}

	inv := m.Invocation(tree, platforms, library)
	m.logger.Info("merging universal bundle", "library", library, "platforms", platforms)

	result, err := m.runner.Run(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}
	if !result.Success() {
		return "", fmt.Errorf("%w: xcodebuild exited %d: %s",
			ErrMergeFailed, result.ExitCode, result.DiagnosticTail(10))
	}

	return tree.BundlePath(library), nil
}

// absPath makes a path absolute where possible; the bundling tool resolves
// -debug-symbols arguments against its own working directory otherwise.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
