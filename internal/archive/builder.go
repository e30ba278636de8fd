// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unipack/unipack/internal/fsutil"
	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/toolchain"
)

var (
	// ErrBuildFailed indicates the archive toolchain invocation failed.
	ErrBuildFailed = errors.New("archive build failed")
	// ErrArtifactMissing indicates an expected build artifact was absent
	// after a successful toolchain invocation.
	ErrArtifactMissing = errors.New("archive artifact missing")
)

// Key returns the staging key for a (platform, variant) pair: the platform
// name for devices, the platform name with a "simulator" suffix otherwise.
func Key(platform manifest.Platform, variant Variant) string {
	if variant == VariantSimulator {
		return string(platform) + "simulator"
	}
	return string(platform)
}

// Archive is the filesystem location of one completed (platform, variant)
// archive produced by Builder.Build.
type Archive struct {
	Platform manifest.Platform
	Variant  Variant
	// Path is the .xcarchive directory.
	Path string
}

// ProductsLibDir returns the directory inside the archive that holds the
// built framework bundle.
func (a Archive) ProductsLibDir() string {
	return filepath.Join(a.Path, "Products", "usr", "local", "lib")
}

// FrameworkPath returns the framework bundle path for the named library.
func (a Archive) FrameworkPath(library string) string {
	return filepath.Join(a.ProductsLibDir(), library+".framework")
}

// DSYMsDir returns the debug-symbol directory inside the archive.
func (a Archive) DSYMsDir() string {
	return filepath.Join(a.Path, "dSYMs")
}

// Options configures a Builder.
type Options struct {
	// Library is the scheme and product name being archived.
	Library string
	// WorkDir is the package root the toolchain runs in.
	WorkDir string
	// DerivedData is the derived-data path handed to the toolchain.
	DerivedData string
	// ArchiveRoot is the directory archive trees are written under.
	ArchiveRoot string
	// Bitcode enables bitcode generation overrides.
	Bitcode bool
	// Xcodebuild is the toolchain binary. Defaults to "xcodebuild".
	Xcodebuild string
}

// Builder produces one platform archive per Build call.
type Builder struct {
	runner toolchain.Runner
	opts   Options
	logger *log.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(runner toolchain.Runner, opts Options, logger *log.Logger) *Builder {
	if opts.Xcodebuild == "" {
		opts.Xcodebuild = "xcodebuild"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{runner: runner, opts: opts, logger: logger}
}

// Invocation returns the toolchain invocation Build would run for the pair,
// without running it. Used by dry-run output.
func (b *Builder) Invocation(platform manifest.Platform, variant Variant) (toolchain.Invocation, error) {
	dest, err := DestinationFor(platform, variant)
	if err != nil {
		return toolchain.Invocation{}, fmt.Errorf("%w: %v", ErrArtifactMissing, err)
	}

	args := []string{
		"archive",
		"-configuration", "Release",
		"-workspace", ".",
		"-scheme", b.opts.Library,
		"-usePackageSupportBuiltinSCM",
		"-derivedDataPath", b.opts.DerivedData,
		"CODE_SIGNING_REQUIRED=NO",
		"CODE_SIGNING_ALLOWED=NO",
		"ONLY_ACTIVE_ARCH=NO",
		"SKIP_INSTALL=NO",
	}
	if b.opts.Bitcode {
		args = append(args, "ENABLE_BITCODE=YES", "BITCODE_GENERATION_MODE=bitcode")
	}
	args = append(args,
		"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
		"-destination", "generic/platform="+dest.Generic,
		"-archivePath", b.archiveBase(platform, variant),
	)

	return toolchain.Invocation{
		Name: b.opts.Xcodebuild,
		Args: args,
		Dir:  b.opts.WorkDir,
	}, nil
}

// Build archives the given (platform, variant) pair and relocates the
// module interface into the archive's framework. The returned Archive points
// at the completed .xcarchive tree.
func (b *Builder) Build(ctx context.Context, platform manifest.Platform, variant Variant) (Archive, error) {
	inv, err := b.Invocation(platform, variant)
	if err != nil {
		return Archive{}, err
	}
	dest, _ := DestinationFor(platform, variant)

	b.logger.Info("archiving", "platform", platform, "variant", variant, "destination", dest.Generic)
	start := time.Now()

	result, err := b.runner.Run(ctx, inv)
	if err != nil {
		return Archive{}, fmt.Errorf("%w: %s %s: %v", ErrBuildFailed, platform, variant, err)
	}
	if !result.Success() {
		return Archive{}, fmt.Errorf("%w: %s %s: xcodebuild exited %d: %s",
			ErrBuildFailed, platform, variant, result.ExitCode, result.DiagnosticTail(10))
	}

	a := Archive{
		Platform: platform,
		Variant:  variant,
		Path:     b.archiveBase(platform, variant) + ".xcarchive",
	}

	if err := b.relocateModuleInterface(a, dest); err != nil {
		return Archive{}, err
	}

	b.logger.Info("archived", "platform", platform, "variant", variant, "duration", time.Since(start).Round(time.Millisecond))
	return a, nil
}

// relocateModuleInterface copies the swiftmodule produced in the derived-data
// build products into the framework's Modules directory. The archiver does
// not embed the module interface in the archive tree itself.
func (b *Builder) relocateModuleInterface(a Archive, dest Destination) error {
	modulesDir := filepath.Join(a.FrameworkPath(b.opts.Library), "Modules")
	if err := os.MkdirAll(modulesDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrArtifactMissing, modulesDir, err)
	}

	src := filepath.Join(
		b.resolve(b.opts.DerivedData),
		"Build", "Intermediates.noindex", "ArchiveIntermediates",
		b.opts.Library, "BuildProductsPath",
		"Release-"+dest.SDK,
		b.opts.Library+".swiftmodule",
	)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: module interface not found at %s", ErrArtifactMissing, src)
	}

	if err := fsutil.CopyInto(src, modulesDir); err != nil {
		return fmt.Errorf("%w: relocate module interface: %v", ErrArtifactMissing, err)
	}
	return nil
}

// archiveBase returns the -archivePath value (without the .xcarchive suffix)
// for a pair, resolved against the work directory.
func (b *Builder) archiveBase(platform manifest.Platform, variant Variant) string {
	return filepath.Join(b.resolve(b.opts.ArchiveRoot), Key(platform, variant))
}

// resolve anchors a possibly relative configured path at the work directory,
// so path math stays valid regardless of the caller's own working directory.
func (b *Builder) resolve(path string) string {
	if filepath.IsAbs(path) || b.opts.WorkDir == "" {
		return path
	}
	return filepath.Join(b.opts.WorkDir, path)
}
