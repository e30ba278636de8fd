// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Invocation describes one external tool call.
type Invocation struct {
	// Name is the binary to execute (looked up on PATH unless absolute).
	Name string
	// Args are the argument vector, excluding the binary name.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String renders the invocation as a shell-like command line for logging
// and dry-run output. Arguments containing spaces are quoted.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Name)
	for _, arg := range inv.Args {
		if strings.ContainsAny(arg, " \t") {
			parts = append(parts, fmt.Sprintf("%q", arg))
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}

// Result holds the outcome of a completed tool process.
type Result struct {
	// ExitCode is the process exit status. Zero means success.
	ExitCode int
	// Output is the captured stdout.
	Output string
	// ErrOutput is the captured stderr.
	ErrOutput string
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// DiagnosticTail returns the last few lines of stderr (or stdout when stderr
// is empty) for embedding in error messages without dumping a full build log.
func (r *Result) DiagnosticTail(lines int) string {
	out := strings.TrimRight(r.ErrOutput, "\n")
	if out == "" {
		out = strings.TrimRight(r.Output, "\n")
	}
	if out == "" {
		return ""
	}
	split := strings.Split(out, "\n")
	if len(split) > lines {
		split = split[len(split)-lines:]
	}
	return strings.Join(split, "\n")
}

// Runner executes external tool invocations.
type Runner interface {
	// Run executes the invocation and blocks until the process exits.
	// A non-zero exit status is not an error; it is reported via the Result.
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// ExecRunner runs invocations with os/exec on the host.
type ExecRunner struct {
	// Stdout, when set, receives a live copy of the child's stdout in
	// addition to capture. Used so long xcodebuild runs stay visible.
	Stdout io.Writer
	// Stderr mirrors the child's stderr the same way.
	Stderr io.Writer
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the invocation, capturing stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Name == "" {
		return nil, errors.New("toolchain: invocation has no binary name")
	}

	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("toolchain: failed to execute %s: %w", inv.Name, err)
	}

	return result, nil
}
