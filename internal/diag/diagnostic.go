package diag

// Severity ranks diagnostics; higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// Note points at a related line, e.g. the earlier declaration of a
// redeclared name.
type Note struct {
	Line int
	Msg  string
}

// Diagnostic is one reportable problem in one input file.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     int
	Lexeme   string
	Notes    []Note
}

func New(sev Severity, code Code, line int, lexeme, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Lexeme:   lexeme,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(line int, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Line: line, Msg: msg})
	return d
}

func (d Diagnostic) WithFile(file string) Diagnostic {
	d.File = file
	return d
}
