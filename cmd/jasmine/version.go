package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"jasmine/internal/buildpipeline"
	"jasmine/internal/version"
)

// buildStamp is what `jasmine version` can say about this binary. Commit
// and date come from -ldflags, falling back to the VCS stamp the Go
// toolchain embeds.
type buildStamp struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	Backends  []string `json:"backends"`
	GoVersion string   `json:"go,omitempty"`
	Commit    string   `json:"git_commit,omitempty"`
	Date      string   `json:"build_date,omitempty"`
	Modified  bool     `json:"modified,omitempty"`
}

var versionFlags struct {
	format string
	hash   bool
	date   bool
	full   bool
}

func init() {
	f := versionCmd.Flags()
	f.BoolVar(&versionFlags.hash, "hash", false, "include git commit hash")
	f.BoolVar(&versionFlags.date, "date", false, "include build timestamp")
	f.BoolVar(&versionFlags.full, "full", false, "include all build metadata")
	f.StringVar(&versionFlags.format, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show jasmine build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stamp := readBuildStamp(debug.ReadBuildInfo)
		if !versionFlags.hash && !versionFlags.full {
			stamp.Commit = ""
			stamp.Modified = false
		}
		if !versionFlags.date && !versionFlags.full {
			stamp.Date = ""
		}
		if !versionFlags.full {
			stamp.GoVersion = ""
		}
		switch strings.ToLower(versionFlags.format) {
		case "pretty":
			writeStampPretty(cmd.OutOrStdout(), stamp)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stamp)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFlags.format)
	},
}

func readBuildStamp(read func() (*debug.BuildInfo, bool)) buildStamp {
	targets, _ := buildpipeline.BackendAll.Targets()
	stamp := buildStamp{
		Tool:      "jasmine",
		Version:   version.Plain(),
		GoVersion: runtime.Version(),
		Commit:    strings.TrimSpace(version.GitCommit),
		Date:      strings.TrimSpace(version.BuildDate),
	}
	for _, b := range targets {
		stamp.Backends = append(stamp.Backends, b.String())
	}
	if info, ok := read(); ok && info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if stamp.Commit == "" {
					stamp.Commit = s.Value
				}
			case "vcs.time":
				if stamp.Date == "" {
					stamp.Date = s.Value
				}
			case "vcs.modified":
				stamp.Modified = s.Value == "true"
			}
		}
	}
	return stamp
}

func writeStampPretty(out io.Writer, s buildStamp) {
	fmt.Fprintf(out, "jasmine %s (backends: %s)\n", version.Version(), strings.Join(s.Backends, ", "))
	if versionFlags.hash || versionFlags.full {
		commit := orUnknown(s.Commit)
		if s.Modified {
			commit += " (modified)"
		}
		fmt.Fprintf(out, "commit: %s\n", commit)
	}
	if versionFlags.date || versionFlags.full {
		fmt.Fprintf(out, "built:  %s\n", orUnknown(s.Date))
	}
	if s.GoVersion != "" {
		fmt.Fprintf(out, "go:     %s\n", s.GoVersion)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
