// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/unipack/unipack/internal/toolchain"
	"github.com/unipack/unipack/internal/toolchain/toolchaintest"
)

func dumpRunner(output string, exitCode int) *toolchaintest.FakeRunner {
	return &toolchaintest.FakeRunner{
		Handler: func(inv toolchain.Invocation) toolchaintest.Response {
			return toolchaintest.Response{
				Result: &toolchain.Result{ExitCode: exitCode, Output: output},
			}
		},
	}
}

func TestCatalog_ResolveExcludesHostPlatform(t *testing.T) {
	runner := dumpRunner(`{
		"platforms": [
			{"platformName": "macos", "version": "12.0"},
			{"platformName": "ios", "version": "14.0"},
			{"platformName": "watchos", "version": "7.0"}
		]
	}`, 0)

	c := NewCatalog(runner, "swift", ".", nil)
	platforms, err := c.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []Platform{"ios", "watchos"}
	if len(platforms) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", platforms, want)
	}
	for i := range want {
		if platforms[i] != want[i] {
			t.Errorf("platforms[%d] = %q, want %q", i, platforms[i], want[i])
		}
	}
}

func TestCatalog_ResolvePreservesOrderAndDuplicates(t *testing.T) {
	runner := dumpRunner(`{
		"platforms": [
			{"platformName": "watchos"},
			{"platformName": "ios"},
			{"platformName": "watchos"}
		]
	}`, 0)

	c := NewCatalog(runner, "swift", ".", nil)
	platforms, err := c.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []Platform{"watchos", "ios", "watchos"}
	if len(platforms) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", platforms, want)
	}
	for i := range want {
		if platforms[i] != want[i] {
			t.Errorf("platforms[%d] = %q, want %q", i, platforms[i], want[i])
		}
	}
}

func TestCatalog_ResolveHostOnly(t *testing.T) {
	runner := dumpRunner(`{"platforms": [{"platformName": "macos", "version": "12.0"}]}`, 0)

	c := NewCatalog(runner, "swift", ".", nil)
	if _, err := c.Resolve(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrCatalogUnavailable for host-only manifest", err)
	}
}

func TestCatalog_ResolveQueryFailure(t *testing.T) {
	runner := &toolchaintest.FakeRunner{
		Handler: func(toolchain.Invocation) toolchaintest.Response {
			return toolchaintest.Response{Err: errors.New("swift: not found")}
		},
	}

	c := NewCatalog(runner, "swift", ".", nil)
	if _, err := c.Resolve(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrCatalogUnavailable", err)
	}
}

func TestCatalog_ResolveNonZeroExit(t *testing.T) {
	runner := dumpRunner("", 1)

	c := NewCatalog(runner, "swift", ".", nil)
	if _, err := c.Resolve(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrCatalogUnavailable", err)
	}
}

func TestCatalog_ResolveMalformedOutput(t *testing.T) {
	for name, output := range map[string]string{
		"not json":     "error: no manifest",
		"no platforms": `{"name": "MyLib"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := NewCatalog(dumpRunner(output, 0), "swift", ".", nil)
			if _, err := c.Resolve(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
				t.Errorf("Resolve() error = %v, want ErrCatalogUnavailable", err)
			}
		})
	}
}

func TestCatalog_ResolveInvokesDumpPackage(t *testing.T) {
	runner := dumpRunner(`{"platforms": [{"platformName": "ios"}]}`, 0)

	c := NewCatalog(runner, "/usr/bin/swift", "/tmp/pkg", nil)
	if _, err := c.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	invs := runner.Invocations()
	if len(invs) != 1 {
		t.Fatalf("invocations = %d, want 1", len(invs))
	}
	if invs[0].Name != "/usr/bin/swift" || invs[0].Dir != "/tmp/pkg" {
		t.Errorf("invocation = %+v, want swift in package dir", invs[0])
	}
	if len(invs[0].Args) != 2 || invs[0].Args[0] != "package" || invs[0].Args[1] != "dump-package" {
		t.Errorf("args = %v, want [package dump-package]", invs[0].Args)
	}
}
