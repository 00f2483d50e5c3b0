package astio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects an AST encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatMsgpack
	FormatSexp
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatSexp:
		return "sexp"
	default:
		return "unknown"
	}
}

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "msgpack", "jasb":
		return FormatMsgpack, nil
	case "sexp", "jas":
		return FormatSexp, nil
	}
	return FormatUnknown, fmt.Errorf("unknown AST format %q (expected json|msgpack|sexp)", s)
}

// FormatFromPath picks the encoding by file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".jasb":
		return FormatMsgpack, nil
	case ".sexp", ".jas":
		return FormatSexp, nil
	default:
		return FormatUnknown, fmt.Errorf("%s: cannot infer AST format from extension %q", path, ext)
	}
}
