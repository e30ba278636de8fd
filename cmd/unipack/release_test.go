// SPDX-License-Identifier: MPL-2.0

package main

import (
	"testing"

	"github.com/unipack/unipack/internal/config"
)

func TestPipelineConfig_DefaultsFromConfig(t *testing.T) {
	cfg = &config.Config{
		DerivedData:  ".derivedData",
		ArchiveRoot:  ".archives",
		StagingRoot:  ".staging",
		ReleaseDir:   "release",
		ManifestPath: "Package.swift",
		Jobs:         2,
		Bitcode:      true,
		Xcodebuild:   "xcodebuild",
		Swift:        "swift",
	}

	pcfg := pipelineConfig(releaseCmd, "MyLib")

	if pcfg.Library != "MyLib" {
		t.Errorf("Library = %q, want MyLib", pcfg.Library)
	}
	if pcfg.Jobs != 2 {
		t.Errorf("Jobs = %d, want 2 from config", pcfg.Jobs)
	}
	if pcfg.ReleaseDir != "release" {
		t.Errorf("ReleaseDir = %q, want release", pcfg.ReleaseDir)
	}
	if !pcfg.Bitcode {
		t.Error("Bitcode = false, want true from config")
	}
}

func TestPipelineConfig_FlagOverrides(t *testing.T) {
	cfg = &config.Config{ReleaseDir: "release", Jobs: 1}

	if err := releaseCmd.Flags().Set("output", "dist"); err != nil {
		t.Fatalf("Set(output): %v", err)
	}
	if err := releaseCmd.Flags().Set("jobs", "6"); err != nil {
		t.Fatalf("Set(jobs): %v", err)
	}
	t.Cleanup(func() {
		releaseOutput = ""
		releaseJobs = 0
		releaseCmd.ResetFlags()
		// Re-register flags cleared by ResetFlags for other tests.
		releaseCmd.Flags().StringVarP(&releaseOutput, "output", "o", "", "")
		releaseCmd.Flags().StringVar(&releaseDerivedData, "derived-data", "", "")
		releaseCmd.Flags().IntVarP(&releaseJobs, "jobs", "j", 0, "")
		releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "")
		releaseCmd.Flags().BoolVar(&releaseKeepStaging, "keep-staging", false, "")
	})

	pcfg := pipelineConfig(releaseCmd, "MyLib")

	if pcfg.ReleaseDir != "dist" {
		t.Errorf("ReleaseDir = %q, want dist from --output", pcfg.ReleaseDir)
	}
	if pcfg.Jobs != 6 {
		t.Errorf("Jobs = %d, want 6 from --jobs", pcfg.Jobs)
	}
}

func TestExitError_Message(t *testing.T) {
	e := &ExitError{Code: 3}
	if e.Error() != "exit status 3" {
		t.Errorf("Error() = %q, want %q", e.Error(), "exit status 3")
	}
}
