// SPDX-License-Identifier: MPL-2.0

// Package config loads unipack settings from the platform config directory
// and UNIPACK_* environment variables, with working defaults for every key.
package config
