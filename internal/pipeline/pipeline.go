// Package pipeline walks input files through extraction, reconstruction,
// pruning, refinement and polish, and writes the cleaned text alongside a
// per-run report. File-level failures are recorded and skipped; they never
// abort the batch.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/docpolish/docpolish/internal/arbiter"
	"github.com/docpolish/docpolish/internal/chunker"
	"github.com/docpolish/docpolish/internal/detector"
	"github.com/docpolish/docpolish/internal/extract"
	"github.com/docpolish/docpolish/internal/logger"
	"github.com/docpolish/docpolish/internal/pruner"
	"github.com/docpolish/docpolish/internal/reconstruct"
	"github.com/docpolish/docpolish/internal/refine"
	"github.com/docpolish/docpolish/internal/refiner"
	"github.com/docpolish/docpolish/internal/store"
	"github.com/docpolish/docpolish/internal/validator"
)

// Options selects the stages of a run and their parameters.
type Options struct {
	Input        string // file or directory
	OutputDir    string // empty writes next to each input file
	Suffix       string // appended to the input stem
	Command      string // recorded in the run report
	Model        string // recorded in the run report
	Workers      int    // concurrently processed files
	SkipExisting bool

	Clean          bool     // structural reconstruction pass
	ExtraLabels    []string // section labels stripped during reconstruction
	StartHeading   string   // explicit pruning bounds
	EndHeading     string
	DetectHeadings bool // ask the Finder when no explicit bounds are set
	Refine         bool
	Polish         bool

	ChunkSize      int
	ChunkOverlap   int
	ScoreThreshold int
}

// Deps carries the collaborators a run may need. Only the stages selected
// in Options require their dependency to be non-nil.
type Deps struct {
	Arbiter   arbiter.Arbiter
	Refiner   refiner.Refiner
	Polisher  refiner.Polisher
	Finder    pruner.Finder
	Validator *validator.Validator
	Detector  *detector.Detector
	Store     *store.Store
}

// Statuses recorded per file.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// FileResult is the outcome for a single input file.
type FileResult struct {
	Path           string
	Status         string
	Err            error
	Paragraphs     int
	ChunksTotal    int
	ChunksRepaired int
}

// Report sums up one run.
type Report struct {
	RunID     string
	Files     []FileResult
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Pipeline binds a dependency set to run options.
type Pipeline struct {
	deps Deps
	opts Options
}

// New builds a Pipeline. A missing suffix defaults to "_polished.txt" and
// the worker count is clamped to at least one.
func New(deps Deps, opts Options) *Pipeline {
	if opts.Suffix == "" {
		opts.Suffix = "_polished.txt"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{deps: deps, opts: opts}
}

// Run processes every supported file under the input path and returns the
// per-file outcomes in input order.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	started := time.Now()

	files, err := p.collectFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported files under %s", p.opts.Input)
	}

	runID := uuid.NewString()
	logger.Info("starting run", "run", runID, "files", len(files), "workers", p.opts.Workers)

	if p.deps.Store != nil {
		if err := p.deps.Store.StartRun(ctx, runID, p.opts.Command, p.opts.Model); err != nil {
			logger.Warn("failed to record run start", "error", err)
		}
	}

	type indexedResult struct {
		index int
		res   FileResult
	}

	jobs := make(chan int)
	results := make(chan indexedResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- indexedResult{index: i, res: p.processFile(ctx, files[i])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{RunID: runID, Files: make([]FileResult, len(files))}
	done := 0
	for ir := range results {
		report.Files[ir.index] = ir.res
		done++

		switch ir.res.Status {
		case StatusOK:
			report.Succeeded++
			logger.Info("file done", "file", ir.res.Path, "progress", fmt.Sprintf("%d/%d", done, len(files)))
		case StatusSkipped:
			report.Skipped++
			logger.Info("file skipped, output exists", "file", ir.res.Path)
		default:
			report.Failed++
			logger.Error("file failed", "file", ir.res.Path, "error", ir.res.Err)
		}

		if p.deps.Store != nil {
			errMsg := ""
			if ir.res.Err != nil {
				errMsg = ir.res.Err.Error()
			}
			err := p.deps.Store.RecordFile(context.WithoutCancel(ctx), runID, ir.res.Path,
				ir.res.Status, ir.res.Paragraphs, ir.res.ChunksTotal, ir.res.ChunksRepaired, errMsg)
			if err != nil {
				logger.Warn("failed to record file result", "error", err)
			}
		}
	}

	report.Duration = time.Since(started)

	if p.deps.Store != nil {
		status := "completed"
		if ctx.Err() != nil {
			status = "canceled"
		}
		if err := p.deps.Store.FinishRun(context.WithoutCancel(ctx), runID, status); err != nil {
			logger.Warn("failed to record run finish", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// collectFiles resolves the input path to the ordered list of files to
// process. Hidden directories are not descended into.
func (p *Pipeline) collectFiles() ([]string, error) {
	info, err := os.Stat(p.opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	if !info.IsDir() {
		if !extract.Supported(p.opts.Input) {
			return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(p.opts.Input))
		}
		return []string{p.opts.Input}, nil
	}

	var files []string
	err = filepath.WalkDir(p.opts.Input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != p.opts.Input {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}
	return files, nil
}

// processFile runs the selected stages over one file. All failures are
// reported through the FileResult, never panics or aborts.
func (p *Pipeline) processFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path, Status: StatusFailed}

	outPath := p.outputPath(path)
	if p.opts.SkipExisting {
		if _, err := os.Stat(outPath); err == nil {
			res.Status = StatusSkipped
			return res
		}
	}

	text, err := extract.ForFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to extract: %w", err)
		return res
	}

	if p.opts.Clean {
		text = p.reconstruct(text)
	}

	text = p.prune(ctx, path, text)

	if p.opts.Refine {
		eng := refine.New(p.deps.Arbiter, p.deps.Refiner, p.deps.Validator, refine.Options{
			ChunkSize:      p.opts.ChunkSize,
			ChunkOverlap:   p.opts.ChunkOverlap,
			ScoreThreshold: p.opts.ScoreThreshold,
		})
		r, err := eng.Refine(ctx, text)
		if err != nil {
			res.Err = fmt.Errorf("failed to refine: %w", err)
			return res
		}
		text = r.Text
		res.Paragraphs = r.Paragraphs
		res.ChunksTotal = r.ChunksTotal
		res.ChunksRepaired = r.ChunksRepaired
	}

	if p.opts.Polish {
		pr, err := refine.PolishParagraphs(ctx, p.deps.Polisher, text)
		if err != nil {
			res.Err = fmt.Errorf("failed to polish: %w", err)
			return res
		}
		text = pr.Text
	}

	if res.Paragraphs == 0 {
		res.Paragraphs = len(chunker.SplitParagraphs(text))
	}

	if err := p.write(outPath, text); err != nil {
		res.Err = err
		return res
	}

	res.Status = StatusOK
	return res
}

// reconstruct applies the structural cleanup pass, turning on CJK space
// collapse when the text calls for it.
func (p *Pipeline) reconstruct(text string) string {
	var opts []reconstruct.Option
	if len(p.opts.ExtraLabels) > 0 {
		opts = append(opts, reconstruct.WithExtraLabels(p.opts.ExtraLabels...))
	}
	if p.collapseCJK(text) {
		opts = append(opts, reconstruct.WithCJKSpaceCollapse())
	}
	return reconstruct.New(opts...).Reconstruct(text)
}

// collapseCJK reports whether the CJK space fix applies: the text must
// contain Han characters, and when a language detector is available it must
// not identify the text as Japanese or another non-Chinese language.
func (p *Pipeline) collapseCJK(text string) bool {
	if !detector.HasHan(text) {
		return false
	}
	if p.deps.Detector != nil {
		if code, ok := p.deps.Detector.DetectISO(text); ok && !strings.EqualFold(code, "zh") {
			return false
		}
	}
	return true
}

// prune cuts front and back matter. Explicit headings win; otherwise the
// Finder proposes a pair when detection is enabled and the document is long
// enough. Any failure or non-match leaves the text untouched.
func (p *Pipeline) prune(ctx context.Context, path, text string) string {
	start, end := p.opts.StartHeading, p.opts.EndHeading

	if start == "" && end == "" {
		if !p.opts.DetectHeadings || p.deps.Finder == nil || !pruner.ShouldDetect(text) {
			return text
		}
		h, err := p.deps.Finder.FindHeadings(ctx, pruner.BuildSample(text))
		if err != nil {
			logger.Warn("heading detection failed, keeping full text", "file", path, "error", err)
			return text
		}
		start, end = h.Start, h.End
		logger.Info("detected headings", "file", path, "start", start, "end", end)
	}

	if start == "" || end == "" {
		return text
	}
	pruned := pruner.Prune(text, start, end)
	if pruned == text {
		logger.Info("pruning made no change", "file", path, "start", start, "end", end)
	}
	return pruned
}

// outputPath maps an input file to its output file.
func (p *Pipeline) outputPath(input string) string {
	dir := p.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, stem+p.opts.Suffix)
}

// write NFC-normalizes the final text and writes it with a trailing newline.
func (p *Pipeline) write(outPath, text string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	out := norm.NFC.String(strings.TrimSpace(text)) + "\n"
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
