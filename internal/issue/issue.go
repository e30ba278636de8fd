// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"

	"github.com/unipack/unipack/internal/archive"
	"github.com/unipack/unipack/internal/manifest"
	"github.com/unipack/unipack/internal/merge"
	"github.com/unipack/unipack/internal/pipeline"
)

type Id int

const (
	CatalogUnavailableId Id = iota + 1
	BuildFailedId
	ArtifactMissingId
	MergeFailedId
	IncompletePlatformSetId
	CleanupFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look up the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	catalogUnavailableIssue = &Issue{
		id: CatalogUnavailableId,
		mdMsg: `
# Could not resolve the platform catalog!

The package manifest query failed or returned something unreadable.

## Things you can try:
- Check that the Swift toolchain is installed and on PATH:
~~~
$ swift --version
~~~
- Run the query yourself and inspect the output:
~~~
$ swift package dump-package
~~~
- Verify Package.swift declares a ` + "`platforms:`" + ` list`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Archive build failed!

xcodebuild reported a failure for one platform/variant pair.

## Common causes:
- The scheme name does not match the library name passed on the command line
- The platform SDK is not installed in the selected Xcode
- Source does not compile for the failing destination

## Things you can try:
- Re-run with verbose mode to see the full invocation:
~~~
$ unipack --verbose release <library>
~~~
- Build the failing destination manually with xcodebuild for full diagnostics
- Check ` + "`xcode-select -p`" + ` points at the intended Xcode`,
	}

	artifactMissingIssue = &Issue{
		id: ArtifactMissingId,
		mdMsg: `
# Expected build artifact not found!

The archive step finished, but the module interface was not where the
toolchain normally leaves it.

## Common causes:
- The library product name differs from the scheme name
- A toolchain update changed the derived-data layout

## Things you can try:
- Inspect the derived-data build products:
~~~
$ ls .derivedData/Build/Intermediates.noindex/ArchiveIntermediates
~~~
- Clear derived data and re-run`,
	}

	mergeFailedIssue = &Issue{
		id: MergeFailedId,
		mdMsg: `
# Universal bundle merge failed!

xcodebuild -create-xcframework rejected the staged frameworks.

## Common causes:
- Two staged frameworks share the same platform/architecture
- A framework was built without library evolution support

## Things you can try:
- Re-run with ` + "`--keep-staging`" + ` and inspect the staged frameworks
- Check each framework's Info.plist for conflicting platform identifiers`,
	}

	incompletePlatformSetIssue = &Issue{
		id: IncompletePlatformSetId,
		mdMsg: `
# A platform is missing from the staging tree!

Every platform in the catalog needs a staged device and simulator framework
before merging. One of them was absent, which means an earlier collection
step silently failed.

## Things you can try:
- Re-run with ` + "`--keep-staging`" + ` and compare the staging tree against
  the platform list:
~~~
$ unipack platforms
~~~`,
	}

	cleanupFailedIssue = &Issue{
		id: CleanupFailedId,
		mdMsg: `
# Cleanup could not complete!

The release bundle may have been produced, but pruning intermediate state or
promoting the staging tree failed.

## Things you can try:
- Check directory permissions on the working directory
- Remove stale intermediate directories by hand and re-run:
~~~
$ rm -rf .archives .staging
~~~`,
	}

	issues = map[Id]*Issue{
		catalogUnavailableIssue.Id():    catalogUnavailableIssue,
		buildFailedIssue.Id():           buildFailedIssue,
		artifactMissingIssue.Id():       artifactMissingIssue,
		mergeFailedIssue.Id():           mergeFailedIssue,
		incompletePlatformSetIssue.Id(): incompletePlatformSetIssue,
		cleanupFailedIssue.Id():         cleanupFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForError resolves the issue for a pipeline error, or nil when the error
// carries no catalogued kind.
func ForError(err error) *Issue {
	switch {
	case errors.Is(err, manifest.ErrCatalogUnavailable):
		return Get(CatalogUnavailableId)
	case errors.Is(err, archive.ErrBuildFailed):
		return Get(BuildFailedId)
	case errors.Is(err, archive.ErrArtifactMissing):
		return Get(ArtifactMissingId)
	case errors.Is(err, merge.ErrIncompletePlatformSet):
		return Get(IncompletePlatformSetId)
	case errors.Is(err, merge.ErrMergeFailed):
		return Get(MergeFailedId)
	case errors.Is(err, pipeline.ErrCleanupFailed):
		return Get(CleanupFailedId)
	default:
		return nil
	}
}
