package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestPlain(t *testing.T) {
	if Plain() != "0.2.0-dev" {
		t.Errorf("Plain() = %q", Plain())
	}
}

func TestLongWithoutColor(t *testing.T) {
	orig := color.NoColor
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		color.NoColor = orig
		GitCommit, BuildDate = origCommit, origDate
	}()
	color.NoColor = true
	GitCommit = "1234567890abcdef1234"
	BuildDate = "2024-01-15"

	want := "jasmine 0.2.0-dev, commit 1234567890ab, built 2024-01-15"
	if got := Long(); got != want {
		t.Errorf("Long() = %q, want %q", got, want)
	}
}

func TestLongOptionalFields(t *testing.T) {
	orig := color.NoColor
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		color.NoColor = orig
		GitCommit, BuildDate = origCommit, origDate
	}()
	color.NoColor = true
	GitCommit, BuildDate = "", ""
	if got := Long(); got != "jasmine 0.2.0-dev" {
		t.Errorf("Long() = %q", got)
	}
}
