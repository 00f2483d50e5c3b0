package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"jasmine/internal/trace"
)

// DefaultOutDir is used when BuildRequest.OutDir is empty.
const DefaultOutDir = "build"

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	// OutDir is the root; artifacts go to OutDir/<program name>/.
	OutDir string
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	CompileResult
	OutputDir string
	Written   []string
}

// Build compiles one input and writes its artifacts. Nothing is written
// unless every requested backend succeeded.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.CompileResult = compileRes
	if err != nil {
		return result, err
	}

	display := req.Display
	if display == "" {
		display = req.Path
	}
	outRoot := req.OutDir
	if outRoot == "" {
		outRoot = DefaultOutDir
	}
	result.OutputDir = filepath.Join(outRoot, compileRes.Name)

	emitStage(req.Progress, display, StageWrite, StatusWorking, nil, 0)
	stop := req.Timer.Track("write")
	start := time.Now()
	written, err := writeArtifacts(result.OutputDir, compileRes.Artifacts)
	result.Written = written
	elapsed := time.Since(start)
	result.Timings.Add(StageWrite, elapsed)
	if err != nil {
		stop("error")
		emitStage(req.Progress, display, StageWrite, StatusError, err, elapsed)
		return result, err
	}
	stop(fmt.Sprintf("%d files", len(written)))
	emitStage(req.Progress, display, StageWrite, StatusDone, nil, elapsed)
	return result, nil
}

func writeArtifacts(dir string, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := writeFileAtomic(p, a.Data); err != nil {
			return written, fmt.Errorf("failed to write %q: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// writeFileAtomic writes through a temp file in the same directory and
// renames it into place, so readers never see a half-written artifact.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// BatchRequest builds many inputs with shared settings.
type BatchRequest struct {
	Inputs []string
	// Template supplies everything but Path, Source and Display.
	Template BuildRequest
	// Jobs bounds concurrency; <= 0 means one job per input.
	Jobs int
	// BaseDir shortens display names in progress events.
	BaseDir string
}

// BatchItem is the outcome for one input.
type BatchItem struct {
	Path    string
	Display string
	Result  BuildResult
	Err     error
}

// ErrBatchFailed is wrapped by BuildAll when at least one input failed.
var ErrBatchFailed = errors.New("build failed")

// BuildAll runs Build for every input. A failing input never stops the
// others; the returned items are in the order of DisplayFiles(Inputs).
func BuildAll(ctx context.Context, req *BatchRequest) ([]BatchItem, error) {
	if req == nil {
		return nil, fmt.Errorf("missing batch request")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	paths, display := dedupInputs(req.Inputs, req.BaseDir)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if err := checkOutputCollisions(paths); err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "build_all", trace.CurrentSpan(ctx)).WithExtra("inputs", fmt.Sprint(len(paths)))
	ctx = trace.WithSpan(ctx, span)

	progress := req.Template.Progress
	emitQueued(progress, display)

	items := make([]BatchItem, len(paths))
	var g errgroup.Group
	if req.Jobs > 0 {
		g.SetLimit(req.Jobs)
	}
	for i := range paths {
		items[i] = BatchItem{Path: paths[i], Display: display[i]}
		g.Go(func() error {
			one := req.Template
			one.Path = paths[i]
			one.Source = nil
			one.Display = display[i]
			res, err := Build(ctx, &one)
			items[i].Result = res
			items[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	status := StatusDone
	if failed > 0 {
		status = StatusError
	}
	if progress != nil {
		progress.OnEvent(Event{Stage: StageWrite, Status: status})
	}
	span.WithExtra("failed", fmt.Sprint(failed)).End("")
	if failed > 0 {
		return items, fmt.Errorf("%w: %d of %d inputs", ErrBatchFailed, failed, len(items))
	}
	return items, nil
}

// checkOutputCollisions rejects inputs that would write the same output
// directory.
func checkOutputCollisions(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := programName(p)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("inputs %q and %q both build into %q", prev, p, name)
		}
		seen[name] = p
	}
	return nil
}
