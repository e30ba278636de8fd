// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Each pipeline error kind maps to a catalogued issue with Markdown-formatted
// remediation guidance, rendered with glamour when a release run fails.
package issue
