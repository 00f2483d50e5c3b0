package astio

// schemaVersion is bumped whenever the meaning of a wire field changes.
const schemaVersion uint16 = 1

// Node kinds on the wire. Expressions first, then statements.
const (
	kindLit    = "lit"
	kindBinary = "binary"
	kindUnary  = "unary"
	kindVar    = "var"
	kindGroup  = "group"
	kindCall   = "call"
	kindAssign = "assign"

	kindExpr   = "expr"
	kindLet    = "let"
	kindBlock  = "block"
	kindIf     = "if"
	kindFor    = "for"
	kindFn     = "fn"
	kindReturn = "return"
)

// wireFile is the document root shared by the JSON and msgpack encodings.
type wireFile struct {
	Schema uint16      `json:"schema" msgpack:"schema"`
	Name   string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Stmts  []*wireNode `json:"stmts" msgpack:"stmts"`
}

// wireNode is one tagged node. Which fields are meaningful depends on Kind:
//
//	lit     Int | Str | Bool
//	binary  Name=operator, Children=[left right]
//	unary   Name=operator, Children=[operand]
//	var     Name
//	group   Children=[inner]
//	call    Name=callee, Children=args
//	assign  Name, Children=[value]
//	expr    Children=[expression]
//	let     Name, Type (optional), Children=[init]
//	block   Children=stmts
//	if      Children=[cond then else?]
//	for     Name, Children=[start end body]
//	fn      Name, Params, Type=result (optional), Children=[body block]
//	return  Children=[value?]
type wireNode struct {
	Kind     string      `json:"kind" msgpack:"kind"`
	Line     int         `json:"line,omitempty" msgpack:"line,omitempty"`
	Name     string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Int      *int64      `json:"int,omitempty" msgpack:"int,omitempty"`
	Str      *string     `json:"str,omitempty" msgpack:"str,omitempty"`
	Bool     *bool       `json:"bool,omitempty" msgpack:"bool,omitempty"`
	Type     string      `json:"type,omitempty" msgpack:"type,omitempty"`
	Params   []wireParam `json:"params,omitempty" msgpack:"params,omitempty"`
	Children []*wireNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

type wireParam struct {
	Name string `json:"name" msgpack:"name"`
	Type string `json:"type" msgpack:"type"`
	Line int    `json:"line,omitempty" msgpack:"line,omitempty"`
}
