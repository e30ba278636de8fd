// SPDX-License-Identifier: MPL-2.0

// Package toolchaintest provides a scripted Runner for pipeline tests.
package toolchaintest

import (
	"context"
	"sync"

	"github.com/unipack/unipack/internal/toolchain"
)

// Response is what the fake returns for one matched invocation.
type Response struct {
	Result *toolchain.Result
	Err    error
}

// FakeRunner records every invocation and answers via a handler function.
// The zero value succeeds every invocation with an empty Result.
type FakeRunner struct {
	// Handler, when set, decides the response per invocation. It may create
	// filesystem artifacts to simulate toolchain side effects.
	Handler func(inv toolchain.Invocation) Response

	mu          sync.Mutex
	invocations []toolchain.Invocation
}

// Run records the invocation and returns the scripted response.
func (f *FakeRunner) Run(_ context.Context, inv toolchain.Invocation) (*toolchain.Result, error) {
	f.mu.Lock()
	f.invocations = append(f.invocations, inv)
	f.mu.Unlock()

	if f.Handler != nil {
		resp := f.Handler(inv)
		if resp.Result == nil && resp.Err == nil {
			return &toolchain.Result{}, nil
		}
		return resp.Result, resp.Err
	}
	return &toolchain.Result{}, nil
}

// Invocations returns a copy of all recorded invocations in order.
func (f *FakeRunner) Invocations() []toolchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]toolchain.Invocation, len(f.invocations))
	copy(out, f.invocations)
	return out
}

// Count returns how many invocations have been recorded.
func (f *FakeRunner) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invocations)
}
