// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/unipack/unipack/internal/toolchain"
)

// Platform identifies one device family from the package manifest
// (e.g. "ios", "watchos", "tvos").
type Platform string

// HostPlatform is the development platform. It is excluded from every
// resolved catalog because the packaging toolchain runs on it natively.
const HostPlatform Platform = "macos"

// ErrCatalogUnavailable indicates the platform catalog could not be resolved:
// the manifest query tool failed to run, or its output was malformed.
var ErrCatalogUnavailable = errors.New("platform catalog unavailable")

// Catalog resolves target platforms from the package manifest.
type Catalog struct {
	runner    toolchain.Runner
	swiftPath string
	dir       string
	logger    *log.Logger
}

// NewCatalog creates a Catalog that queries the manifest in dir using the
// swift binary at swiftPath.
func NewCatalog(runner toolchain.Runner, swiftPath, dir string, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{
		runner:    runner,
		swiftPath: swiftPath,
		dir:       dir,
		logger:    logger,
	}
}

// packageDescription mirrors the subset of `swift package dump-package`
// output this tool consumes.
type packageDescription struct {
	Platforms []struct {
		PlatformName string `json:"platformName"`
	} `json:"platforms"`
}

// Resolve runs the manifest query and returns every declared platform except
// the host platform. Order is preserved from the manifest and drives the
// archive order downstream; duplicates are passed through untouched.
func (c *Catalog) Resolve(ctx context.Context) ([]Platform, error) {
	result, err := c.runner.Run(ctx, toolchain.Invocation{
		Name: c.swiftPath,
		Args: []string{"package", "dump-package"},
		Dir:  c.dir,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if !result.Success() {
		return nil, fmt.Errorf("%w: swift package dump-package exited %d: %s",
			ErrCatalogUnavailable, result.ExitCode, result.DiagnosticTail(5))
	}

	var desc packageDescription
	if err := json.Unmarshal([]byte(result.Output), &desc); err != nil {
		return nil, fmt.Errorf("%w: malformed package description: %v", ErrCatalogUnavailable, err)
	}
	if len(desc.Platforms) == 0 {
		return nil, fmt.Errorf("%w: package manifest declares no platforms", ErrCatalogUnavailable)
	}

	var platforms []Platform
	for _, p := range desc.Platforms {
		if Platform(p.PlatformName) == HostPlatform {
			continue
		}
		platforms = append(platforms, Platform(p.PlatformName))
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: package manifest declares no platforms beyond %s",
			ErrCatalogUnavailable, HostPlatform)
	}

	c.logger.Debug("resolved platform catalog", "platforms", platforms)
	return platforms, nil
}
