package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path
	FormatText                 // one human-readable line per event
	FormatNDJSON               // newline-delimited JSON
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "auto"
	}
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// formatFor resolves FormatAuto by the output file extension.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// appendEvent encodes ev onto buf, newline included.
func appendEvent(buf []byte, ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		return appendJSON(buf, ev)
	}
	return appendText(buf, ev)
}

var kindMarks = [...]string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•"}

// appendText renders `#seq [scope] → name (detail) k=v k=v`; child events
// are indented one step.
func appendText(buf []byte, ev *Event) []byte {
	buf = fmt.Appendf(buf, "#%-5d [%s] ", ev.Seq, ev.Scope)
	if ev.ParentID > 0 {
		buf = append(buf, "  "...)
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		buf = append(buf, kindMarks[ev.Kind]...)
		buf = append(buf, ' ')
	}
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = append(buf, " ("...)
		buf = append(buf, ev.Detail...)
		buf = append(buf, ')')
	}
	for _, a := range ev.Attrs {
		buf = append(buf, ' ')
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		buf = append(buf, a.Value...)
	}
	return append(buf, '\n')
}

// appendJSON writes one JSON object by hand so attrs keep their order.
func appendJSON(buf []byte, ev *Event) []byte {
	buf = append(buf, `{"time":`...)
	buf = appendJSONString(buf, ev.Time.Format(time.RFC3339Nano))
	buf = append(buf, `,"seq":`...)
	buf = strconv.AppendUint(buf, ev.Seq, 10)
	buf = append(buf, `,"kind":`...)
	buf = appendJSONString(buf, ev.Kind.String())
	buf = append(buf, `,"scope":`...)
	buf = appendJSONString(buf, ev.Scope.String())
	if ev.SpanID != 0 {
		buf = append(buf, `,"span_id":`...)
		buf = strconv.AppendUint(buf, ev.SpanID, 10)
	}
	if ev.ParentID != 0 {
		buf = append(buf, `,"parent_id":`...)
		buf = strconv.AppendUint(buf, ev.ParentID, 10)
	}
	buf = append(buf, `,"name":`...)
	buf = appendJSONString(buf, ev.Name)
	if ev.Detail != "" {
		buf = append(buf, `,"detail":`...)
		buf = appendJSONString(buf, ev.Detail)
	}
	if len(ev.Attrs) > 0 {
		buf = append(buf, `,"attrs":{`...)
		for i, a := range ev.Attrs {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSONString(buf, a.Key)
			buf = append(buf, ':')
			buf = appendJSONString(buf, a.Value)
		}
		buf = append(buf, '}')
	}
	return append(buf, "}\n"...)
}

func appendJSONString(buf []byte, s string) []byte {
	quoted, err := json.Marshal(s)
	if err != nil {
		return append(buf, `""`...)
	}
	return append(buf, quoted...)
}
