// Package buildpipeline orchestrates the compilation process: decode one
// serialized AST, run the requested backends over it and collect their text
// output as artifacts.
package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jasmine/internal/ast"
	"jasmine/internal/astio"
	"jasmine/internal/backend/qbe"
	"jasmine/internal/backend/wasm"
	"jasmine/internal/diag"
	"jasmine/internal/observ"
	"jasmine/internal/trace"
)

// Artifact file names inside an output directory.
const (
	ArtifactWasm = "main.wat"
	ArtifactItoa = "itoa.wat"
	ArtifactQBE  = "main.ssa"
)

const defaultMaxDiagnostics = 100

// CompileRequest configures the compilation of one input.
type CompileRequest struct {
	// Path names the input file. When Source is nil the file is read from disk.
	Path string
	// Source overrides reading Path.
	Source []byte
	// Format overrides the extension-based format choice.
	Format         astio.Format
	Backend        Backend
	Wasm           wasm.Options
	MaxDiagnostics int
	// Display is the name used in progress events; defaults to Path.
	Display  string
	Progress ProgressSink
	Timer    *observ.Timer
}

// Artifact is one generated text file.
type Artifact struct {
	Name string
	Data []byte
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	// Name is the program name: File.Name or the input base name.
	Name      string
	File      *ast.File
	Wasm      *wasm.Module
	Itoa      *wasm.Module
	QBE       *qbe.Module
	Artifacts []Artifact
	Bag       *diag.Bag
	Timings   Timings
}

// Artifact returns the artifact with the given name, or nil.
func (r *CompileResult) Artifact(name string) *Artifact {
	for i := range r.Artifacts {
		if r.Artifacts[i].Name == name {
			return &r.Artifacts[i]
		}
	}
	return nil
}

type compilation struct {
	req     *CompileRequest
	display string
	tracer  trace.Tracer
	parent  uint64
	result  *CompileResult
}

// Compile decodes the input and runs every requested backend. Each backend
// gets its own emitter, so a failure in one never leaves state behind for
// the other. Compile is all-or-nothing: on error Artifacts is empty and the
// diagnostic, if any, is in Bag.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	begin := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Path == "" && req.Source == nil {
		return result, fmt.Errorf("missing input path")
	}
	targets, err := req.Backend.Targets()
	if err != nil {
		return result, err
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	result.Bag = diag.NewBag(maxDiag)

	c := &compilation{
		req:     req,
		display: req.Display,
		tracer:  trace.FromContext(ctx),
		result:  &result,
	}
	if c.display == "" {
		c.display = req.Path
	}
	span := trace.Begin(c.tracer, trace.ScopeDriver, "compile", trace.CurrentSpan(ctx)).WithExtra("file", c.display)
	c.parent = span.ID()

	if err := c.decode(); err != nil {
		span.End("decode failed")
		return result, err
	}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			result.Artifacts = nil
			return result, err
		}
		switch target {
		case BackendWasm:
			err = c.wasm()
		case BackendQBE:
			err = c.qbe()
		}
		if err != nil {
			span.End(target.String() + " failed")
			result.Artifacts = nil
			return result, err
		}
	}
	span.WithExtra("artifacts", strconv.Itoa(len(result.Artifacts))).End("")
	emitStage(req.Progress, c.display, StageEmit, StatusDone, nil, time.Since(begin))
	return result, nil
}

// fail reports err for stage; diagnostics also go to the bag.
func (c *compilation) fail(stage Stage, err error) error {
	if diag.CodeOf(err) != diag.UnknownCode {
		c.result.Bag.AddError(c.req.Path, err)
	}
	emitStage(c.req.Progress, c.display, stage, StatusError, err, 0)
	return err
}

func (c *compilation) decode() error {
	emitStage(c.req.Progress, c.display, StageDecode, StatusWorking, nil, 0)
	stop := c.req.Timer.Track("decode")
	start := time.Now()

	format := c.req.Format
	if format == astio.FormatUnknown {
		f, err := astio.FormatFromPath(c.req.Path)
		if err != nil {
			stop("error")
			return c.fail(StageDecode, err)
		}
		format = f
	}
	src := c.req.Source
	if src == nil {
		// #nosec G304 -- the path is an explicit compiler input
		data, err := os.ReadFile(c.req.Path)
		if err != nil {
			stop("error")
			return c.fail(StageDecode, fmt.Errorf("read %s: %w", c.req.Path, err))
		}
		src = data
	}
	file, err := astio.Decode(src, format)
	if err != nil {
		stop("error")
		return c.fail(StageDecode, err)
	}
	if file.Name == "" {
		file.Name = programName(c.req.Path)
	}
	c.result.File = file
	c.result.Name = file.Name

	elapsed := time.Since(start)
	c.result.Timings.Add(StageDecode, elapsed)
	stop(format.String())
	emitStage(c.req.Progress, c.display, StageDecode, StatusDone, nil, elapsed)
	return nil
}

func programName(path string) string {
	if path == "" {
		return "main"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *compilation) wasm() error {
	opts := c.req.Wasm
	opts.Tracer = c.tracer
	pass := trace.Begin(c.tracer, trace.ScopePass, "wasm", c.parent)
	defer pass.End("")

	emitStage(c.req.Progress, c.display, StageLower, StatusWorking, nil, 0)
	stop := c.req.Timer.Track("wasm.lower")
	start := time.Now()
	mod, err := wasm.Compile(c.result.File, opts)
	c.result.Timings.Add(StageLower, time.Since(start))
	if err != nil {
		stop("error")
		return c.fail(StageLower, err)
	}
	stop(strconv.Itoa(len(mod.Funcs)) + " funcs")
	c.result.Wasm = mod

	emitStage(c.req.Progress, c.display, StageEmit, StatusWorking, nil, 0)
	stop = c.req.Timer.Track("wasm.emit")
	start = time.Now()
	c.result.Artifacts = append(c.result.Artifacts, Artifact{Name: ArtifactWasm, Data: []byte(wasm.Text(mod))})
	if !opts.InlineItoa {
		helper := wasm.ItoaModule(opts)
		if err := wasm.Validate(helper); err != nil {
			stop("error")
			return c.fail(StageEmit, fmt.Errorf("itoa helper: %w", err))
		}
		c.result.Itoa = helper
		c.result.Artifacts = append(c.result.Artifacts, Artifact{Name: ArtifactItoa, Data: []byte(wasm.Text(helper))})
	}
	c.result.Timings.Add(StageEmit, time.Since(start))
	stop("")
	return nil
}

func (c *compilation) qbe() error {
	pass := trace.Begin(c.tracer, trace.ScopePass, "qbe", c.parent)
	defer pass.End("")

	emitStage(c.req.Progress, c.display, StageLower, StatusWorking, nil, 0)
	stop := c.req.Timer.Track("qbe.lower")
	start := time.Now()
	mod, err := qbe.Compile(c.result.File, qbe.Options{Tracer: c.tracer})
	c.result.Timings.Add(StageLower, time.Since(start))
	if err != nil {
		stop("error")
		return c.fail(StageLower, err)
	}
	stop(strconv.Itoa(len(mod.Funcs)) + " funcs")
	c.result.QBE = mod

	emitStage(c.req.Progress, c.display, StageEmit, StatusWorking, nil, 0)
	stop = c.req.Timer.Track("qbe.emit")
	start = time.Now()
	c.result.Artifacts = append(c.result.Artifacts, Artifact{Name: ArtifactQBE, Data: []byte(qbe.Text(mod))})
	c.result.Timings.Add(StageEmit, time.Since(start))
	stop("")
	return nil
}
