// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/unipack/unipack/internal/archive"
	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/merge"
	"github.com/unipack/unipack/internal/staging"
	"github.com/unipack/unipack/internal/toolchain"
)

// ErrCleanupFailed indicates a post-merge cleanup or promotion step could not
// complete. A successfully merged bundle is not invalidated by it.
var ErrCleanupFailed = errors.New("cleanup failed")

// Config holds everything one release run needs. Relative paths are anchored
// at WorkDir.
type Config struct {
	// Library is the scheme/product being released.
	Library string
	// WorkDir is the Swift package root.
	WorkDir string
	// ManifestPath is the package manifest. Defaults to WorkDir/Package.swift.
	ManifestPath string
	// DerivedData is the toolchain derived-data path.
	DerivedData string
	// ArchiveRoot holds intermediate .xcarchive trees.
	ArchiveRoot string
	// StagingRoot is the staging tree that becomes the release directory.
	StagingRoot string
	// ReleaseDir is the published output location.
	ReleaseDir string
	// Jobs bounds concurrent archive builds. Values below 1 mean serial.
	Jobs int
	// Bitcode enables bitcode generation overrides.
	Bitcode bool
	// KeepStaging leaves the per-platform intermediate directories in the
	// published output instead of pruning them.
	KeepStaging bool
	// Xcodebuild and Swift override the toolchain binaries.
	Xcodebuild string
	Swift      string
}

// Result describes a completed release run.
type Result struct {
	// BundlePath is the merged bundle inside the published release directory.
	BundlePath string
	// ReleaseDir is the published output directory.
	ReleaseDir string
	// Platforms is the catalog the run covered.
	Platforms []manifest.Platform
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// Pipeline wires the release stages together.
type Pipeline struct {
	cfg       Config
	logger    *log.Logger
	catalog   *manifest.Catalog
	builder   *archive.Builder
	collector *staging.Collector
	merger    *merge.Merger
}

// New creates a Pipeline. Zero-value Config fields get the conventional
// defaults (Package.swift, .derivedData, .archives, .staging, release).
func New(cfg Config, runner toolchain.Runner, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "Package.swift"
	}
	if cfg.DerivedData == "" {
		cfg.DerivedData = ".derivedData"
	}
	if cfg.ArchiveRoot == "" {
		cfg.ArchiveRoot = ".archives"
	}
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = ".staging"
	}
	if cfg.ReleaseDir == "" {
		cfg.ReleaseDir = "release"
	}
	if cfg.Swift == "" {
		cfg.Swift = "swift"
	}
	cfg.ManifestPath = anchor(cfg.WorkDir, cfg.ManifestPath)
	cfg.DerivedData = anchor(cfg.WorkDir, cfg.DerivedData)
	cfg.ArchiveRoot = anchor(cfg.WorkDir, cfg.ArchiveRoot)
	cfg.StagingRoot = anchor(cfg.WorkDir, cfg.StagingRoot)
	cfg.ReleaseDir = anchor(cfg.WorkDir, cfg.ReleaseDir)

	tree := staging.Tree{Root: cfg.StagingRoot}
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		catalog: manifest.NewCatalog(runner, cfg.Swift, cfg.WorkDir, logger),
		builder: archive.NewBuilder(runner, archive.Options{
			Library:     cfg.Library,
			WorkDir:     cfg.WorkDir,
			DerivedData: cfg.DerivedData,
			ArchiveRoot: cfg.ArchiveRoot,
			Bitcode:     cfg.Bitcode,
			Xcodebuild:  cfg.Xcodebuild,
		}, logger),
		collector: staging.NewCollector(tree, logger),
		merger:    merge.NewMerger(runner, cfg.Xcodebuild, logger),
	}
}

// Run executes the full release: force dynamic linkage, resolve the catalog,
// archive and collect every (platform, variant) pair, merge, clean up, and
// promote the staging tree to the release path. The manifest mutation is
// reverted on every exit path.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	start := time.Now()

	tx, err := manifest.Apply(p.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := tx.Revert(); rerr != nil {
			rerr = fmt.Errorf("%w: %v", ErrCleanupFailed, rerr)
			if err == nil {
				err = rerr
				return
			}
			// The run already failed; don't mask its error.
			p.logger.Error("manifest revert failed", "err", rerr)
		}
	}()

	platforms, err := p.catalog.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := archive.ValidateCatalog(platforms); err != nil {
		return nil, err
	}

	if err := p.buildAll(ctx, platforms); err != nil {
		return nil, err
	}

	tree := p.collector.Tree()
	if _, err := p.merger.Merge(ctx, tree, platforms, p.cfg.Library); err != nil {
		return nil, err
	}

	if err := p.finalize(platforms); err != nil {
		return nil, err
	}

	return &Result{
		BundlePath: filepath.Join(p.cfg.ReleaseDir, p.cfg.Library+".xcframework"),
		ReleaseDir: p.cfg.ReleaseDir,
		Platforms:  platforms,
		Duration:   time.Since(start),
	}, nil
}

// buildAll archives and collects every (platform, variant) pair. Builds are
// independent, so they run in a bounded worker pool; the manifest transaction
// opened by Run brackets the whole phase. The first failure cancels the rest.
func (p *Pipeline) buildAll(ctx context.Context, platforms []manifest.Platform) error {
	jobs := p.cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, platform := range platforms {
		for _, variant := range archive.Variants {
			if variant == archive.VariantSimulator && !archive.HasSimulator(platform) {
				continue
			}
			g.Go(func() error {
				a, err := p.builder.Build(gctx, platform, variant)
				if err != nil {
					return err
				}
				return p.collector.Collect(a)
			})
		}
	}

	return g.Wait()
}

// finalize prunes intermediate state and promotes the staging tree to the
// release path in a single rename.
func (p *Pipeline) finalize(platforms []manifest.Platform) error {
	if err := os.RemoveAll(p.cfg.ArchiveRoot); err != nil {
		return fmt.Errorf("%w: remove archive intermediates: %v", ErrCleanupFailed, err)
	}

	tree := p.collector.Tree()
	if !p.cfg.KeepStaging {
		for _, platform := range platforms {
			for _, variant := range archive.Variants {
				if variant == archive.VariantSimulator && !archive.HasSimulator(platform) {
					continue
				}
				leaf := tree.Dir(platform, variant)
				if err := os.RemoveAll(leaf); err != nil {
					return fmt.Errorf("%w: prune %s: %v", ErrCleanupFailed, leaf, err)
				}
			}
		}
	}

	// Replace any previous release, then promote atomically.
	if err := os.RemoveAll(p.cfg.ReleaseDir); err != nil {
		return fmt.Errorf("%w: clear release dir: %v", ErrCleanupFailed, err)
	}
	if err := os.Rename(tree.Root, p.cfg.ReleaseDir); err != nil {
		return fmt.Errorf("%w: promote staging tree: %v", ErrCleanupFailed, err)
	}

	p.logger.Info("release published", "dir", p.cfg.ReleaseDir)
	return nil
}

// Plan resolves the catalog and returns every toolchain invocation a run
// would issue, in order, without mutating anything. Used by dry-run output.
func (p *Pipeline) Plan(ctx context.Context) ([]toolchain.Invocation, error) {
	platforms, err := p.catalog.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := archive.ValidateCatalog(platforms); err != nil {
		return nil, err
	}

	var invocations []toolchain.Invocation
	for _, platform := range platforms {
		for _, variant := range archive.Variants {
			if variant == archive.VariantSimulator && !archive.HasSimulator(platform) {
				continue
			}
			inv, err := p.builder.Invocation(platform, variant)
			if err != nil {
				return nil, err
			}
			invocations = append(invocations, inv)
		}
	}
	invocations = append(invocations, p.merger.Invocation(p.collector.Tree(), platforms, p.cfg.Library))
	return invocations, nil
}

// anchor joins path to base unless it is already absolute or base is empty.
func anchor(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
