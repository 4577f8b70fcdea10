// Package configs provides embedded configuration templates for notelog.
//
// Templates are embedded at build time so `notelog config init` works from any
// installation. They are used by cmd/notelog/cmd/config.go:
//   - user-config.example.yaml: written to ~/.config/notelog/config.yaml
//   - project-config.example.yaml: written to .notelog.yaml with --project
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/notelog/config.yaml)
//  3. Project config (.notelog.yaml)
//  4. .env in the working directory
//  5. Environment variables (NOTELOG_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for machine-level configuration.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for per-directory configuration.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
