// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the listdev daemon.
//
// Configuration comes from a single file named by:
//   - the LISTDEV_CONFIG environment variable, or
//   - the --config flag passed to the daemon
//
// There is no automatic discovery. Without either, the daemon runs on
// [Default]. Files may be YAML or JSONC (by .json/.jsonc extension).
//
// A file may carry development and production sections that override
// base values when the environment matches. Path fields accept
// ${VAR} and ${VAR:-default} references, expanded after overrides.
package config
