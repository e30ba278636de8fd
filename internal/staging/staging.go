// SPDX-License-Identifier: MPL-2.0

// Package staging owns the normalized staging tree the merge step reads.
//
// The tree is keyed by platform and platform+"simulator" directories, each
// holding the platform's framework bundle and a dSYMs subdirectory:
//
//	<root>/ios/MyLib.framework
//	<root>/ios/dSYMs/MyLib.framework.dSYM
//	<root>/iossimulator/...
//
// The Collector fills the tree incrementally as archives complete; the whole
// tree is later promoted to the release path in one rename.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/unipack/unipack/internal/archive"
	"github.com/unipack/unipack/internal/fsutil"
	"github.com/unipack/unipack/internal/manifest"
)

// Tree addresses locations inside the staging directory.
type Tree struct {
	// Root is the staging directory. All returned paths live under it.
	Root string
}

// Dir returns the leaf directory for a (platform, variant) pair.
func (t Tree) Dir(platform manifest.Platform, variant archive.Variant) string {
	return filepath.Join(t.Root, archive.Key(platform, variant))
}

// FrameworkPath returns the framework bundle path for a pair.
func (t Tree) FrameworkPath(platform manifest.Platform, variant archive.Variant, library string) string {
	return filepath.Join(t.Dir(platform, variant), library+".framework")
}

// DSYMsDir returns the debug-symbol directory for a pair.
func (t Tree) DSYMsDir(platform manifest.Platform, variant archive.Variant) string {
	return filepath.Join(t.Dir(platform, variant), "dSYMs")
}

// DSYMPath returns the framework dSYM bundle path for a pair.
func (t Tree) DSYMPath(platform manifest.Platform, variant archive.Variant, library string) string {
	return filepath.Join(t.DSYMsDir(platform, variant), library+".framework.dSYM")
}

// BundlePath returns the merged bundle path for the named library.
func (t Tree) BundlePath(library string) string {
	return filepath.Join(t.Root, library+".xcframework")
}

// Collector relocates archive outputs into the staging tree.
type Collector struct {
	tree   Tree
	logger *log.Logger
}

// NewCollector creates a Collector writing into tree.
func NewCollector(tree Tree, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.Default()
	}
	return &Collector{tree: tree, logger: logger}
}

// Tree returns the staging tree the collector writes into.
func (c *Collector) Tree() Tree { return c.tree }

// Collect copies the framework products and debug symbols out of the archive
// into the staging leaf for its (platform, variant) pair. Collecting the same
// pair again replaces the leaf rather than appending to it.
func (c *Collector) Collect(a archive.Archive) error {
	dest := c.tree.Dir(a.Platform, a.Variant)

	// Replace-don't-append keeps re-collection idempotent.
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clear staging leaf %s: %w", dest, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create staging leaf %s: %w", dest, err)
	}

	if err := fsutil.CopyTree(a.ProductsLibDir(), dest); err != nil {
		return fmt.Errorf("collect products for %s %s: %w", a.Platform, a.Variant, err)
	}
	if err := fsutil.CopyTree(a.DSYMsDir(), c.tree.DSYMsDir(a.Platform, a.Variant)); err != nil {
		return fmt.Errorf("collect debug symbols for %s %s: %w", a.Platform, a.Variant, err)
	}

	c.logger.Debug("collected archive", "platform", a.Platform, "variant", a.Variant, "into", dest)
	return nil
}
