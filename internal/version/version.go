// Package version carries the jasmine build identity.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	Major = "0"
	Minor = "2"
	Patch = "0"
	Pre   = "dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Plain is the semantic version without color codes.
func Plain() string {
	v := Major + "." + Minor + "." + Patch
	if Pre != "" {
		v += "-" + Pre
	}
	return v
}

// Version is Plain colored per component. Color output follows
// color.NoColor.
func Version() string {
	v := versionMajorColor.Sprint(Major) + "." + versionMinorColor.Sprint(Minor) + "." + versionPatchColor.Sprint(Patch)
	if Pre != "" {
		v += "-" + Pre
	}
	return v
}

// Long is the version line printed by `jasmine version`.
func Long() string {
	parts := []string{"jasmine " + Version()}
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		parts = append(parts, "commit "+commit)
	}
	if BuildDate != "" {
		parts = append(parts, "built "+BuildDate)
	}
	return strings.Join(parts, ", ")
}
