// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sync"
)

var (
	staticTypeRe  = regexp.MustCompile(`type:\s*\.static,\s?`)
	dynamicTypeRe = regexp.MustCompile(`type:\s*\.dynamic,\s?`)
	// A library product declaration up to and including its first comma,
	// after which the linkage annotation is inserted.
	libraryProductRe = regexp.MustCompile(`(library\([^,]*,)`)
	// The exact token ForceDynamic inserts, including its trailing space.
	insertedDynamicRe = regexp.MustCompile(`type: \.dynamic, `)
)

// Transaction is an open manifest mutation. It is created by Apply and closed
// by Revert; there is at most one open transaction per release run.
type Transaction struct {
	path     string
	original []byte
	mode     fs.FileMode

	mu       sync.Mutex
	reverted bool
}

// Apply rewrites every library product declaration in the manifest at path to
// dynamic linkage, stripping any prior static or dynamic annotation first so
// the token is never duplicated. It returns a Transaction holding a snapshot
// of the original content; callers must ensure Revert runs on every exit path:
//
//	tx, err := manifest.Apply(path)
//	if err != nil { ... }
//	defer tx.Revert()
func Apply(path string) (*Transaction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	rewritten := ForceDynamic(string(original))
	if err := os.WriteFile(path, []byte(rewritten), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("rewrite manifest %s: %w", path, err)
	}

	return &Transaction{
		path:     path,
		original: original,
		mode:     info.Mode().Perm(),
	}, nil
}

// Revert restores the manifest to its pre-Apply content byte-for-byte.
// It is idempotent: after the first successful restore, further calls are
// no-ops. A failed restore may be retried.
func (tx *Transaction) Revert() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.reverted {
		return nil
	}
	if err := os.WriteFile(tx.path, tx.original, tx.mode); err != nil {
		return fmt.Errorf("restore manifest %s: %w", tx.path, err)
	}
	tx.reverted = true
	return nil
}

// Path returns the manifest file this transaction covers.
func (tx *Transaction) Path() string { return tx.path }

// ForceDynamic returns content with every library product declaration
// annotated `type: .dynamic,`. Existing static or dynamic annotations are
// removed first. Unrelated content is left untouched.
func ForceDynamic(content string) string {
	content = staticTypeRe.ReplaceAllString(content, "")
	content = dynamicTypeRe.ReplaceAllString(content, "")
	return libraryProductRe.ReplaceAllString(content, "$1 type: .dynamic,")
}

// StripDynamic removes the dynamic linkage annotation inserted by
// ForceDynamic. It is the pure-textual inverse for manifests that carried no
// annotation of their own; Revert uses the snapshot instead because a textual
// strip cannot resurrect a removed static annotation.
func StripDynamic(content string) string {
	return insertedDynamicRe.ReplaceAllString(content, "")
}
