// Package golden extracts compiler test cases from Markdown documents.
//
// A case starts at a heading "Test: <name>" and collects the fenced code
// blocks that follow it:
//
//	```jas      the program, in S-expression form (required, once)
//	```stdout   expected output of both backends
//	```error    expected diagnostic code ID, e.g. SEM3002
//
// A case needs an input and exactly one of stdout or error. Fences without
// a language are prose and ignored; any other language is an error.
package golden

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence languages.
const (
	FenceInput  = "jas"
	FenceStdout = "stdout"
	FenceError  = "error"
)

const testPrefix = "Test: "

// Case is one golden program with its expectation.
type Case struct {
	Name  string
	Line  int // line of the heading in the Markdown source
	Input string
	// Stdout is set when the case expects a successful run.
	Stdout    string
	HasStdout bool
	// Error is the expected diagnostic code ID when the case must fail.
	Error string
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	finish := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, testPrefix) {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, testPrefix)),
				Line: lineOf(n, markdown),
			}
		case *ast.FencedCodeBlock:
			language := string(n.Language(markdown))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, markdown)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, language)
			}
			content := fenceContent(n, markdown)
			switch language {
			case FenceInput:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", line, current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
			case FenceStdout:
				if current.HasStdout {
					return ast.WalkStop, fmt.Errorf("line %d: multiple stdout fences found in test '%s'", line, current.Name)
				}
				current.Stdout = content
				current.HasStdout = true
			case FenceError:
				if current.Error != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple error fences found in test '%s'", line, current.Name)
				}
				current.Error = strings.TrimSpace(content)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("line %d: test has no name", c.Line)
	}
	if c.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", c.Name)
	}
	if c.HasStdout == (c.Error != "") {
		return fmt.Errorf("test '%s' needs exactly one of a stdout or an error fence", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of node's first content line.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	if start > len(source) {
		start = len(source)
	}
	return bytes.Count(source[:start], []byte{'\n'}) + 1
}
