package golden

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestExtract(t *testing.T) {
	md := []byte("# Title\n\nprose\n\n```\nplain block\n```\n\n## Test: one\n\n```jas\n(println 1)\n```\n\n```stdout\n1\n```\n\n## Not a test\n\n## Test: two\n\n```jas\n(println y)\n```\n\n```error\nSEM3005\n```\n")
	cases, err := Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "one")
	be.Equal(t, cases[0].Input, "(println 1)")
	be.Equal(t, cases[0].Stdout, "1\n")
	be.True(t, cases[0].HasStdout)
	be.Equal(t, cases[0].Line, 9)

	be.Equal(t, cases[1].Name, "two")
	be.Equal(t, cases[1].Error, "SEM3005")
	be.True(t, !cases[1].HasStdout)
}

func TestExtractEmptyStdout(t *testing.T) {
	cases, err := Extract([]byte("## Test: quiet\n\n```jas\n(let x 1)\n```\n\n```stdout\n```\n"))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.True(t, cases[0].HasStdout)
	be.Equal(t, cases[0].Stdout, "")
}

func TestExtractErrors(t *testing.T) {
	cases := map[string]string{
		"fence outside test": "```jas\n(println 1)\n```\n",
		"unknown fence":      "## Test: a\n\n```jas\n(println 1)\n```\n\n```wat\n(module)\n```\n",
		"no input":           "## Test: a\n\n```stdout\n1\n```\n",
		"no expectation":     "## Test: a\n\n```jas\n(println 1)\n```\n",
		"both expectations":  "## Test: a\n\n```jas\n(println 1)\n```\n\n```stdout\n1\n```\n\n```error\nSEM3005\n```\n",
		"two inputs":         "## Test: a\n\n```jas\n(println 1)\n```\n\n```jas\n(println 2)\n```\n",
	}
	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(md))
			be.True(t, err != nil)
		})
	}
}
