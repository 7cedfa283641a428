package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gnana997/apisync/pkg/describe"
	"github.com/gnana997/apisync/pkg/emitter"
	"github.com/gnana997/apisync/pkg/extractor"
	"github.com/gnana997/apisync/pkg/parser"
	"github.com/gnana997/apisync/pkg/patcher"
	"github.com/gnana997/apisync/pkg/source"
)

// Pipeline runs extraction and patching. Runs share no state except the
// parser manager; callers must not run one Pipeline concurrently against
// the same target.
type Pipeline struct {
	cfg      Config
	resolver *describe.Resolver
	pm       *parser.ParserManager
	log      *slog.Logger
}

// New creates a Pipeline. Close must be called to release the parser.
func New(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg.withDefaults(),
		resolver: describe.NewResolver(cfg.Descriptions),
		pm:       parser.NewParserManager(logger),
		log:      logger,
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Close releases parser resources.
func (p *Pipeline) Close() error {
	return p.pm.Close()
}

// extraction is the output of the read, extract and enrich phases.
type extraction struct {
	files       []string
	descriptors []extractor.MethodDescriptor
	entries     []emitter.Entry
	documented  int
	bare        int
}

// Extract reads the bundle and returns the enriched method list without
// touching the target.
func (p *Pipeline) Extract(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	totalStart := time.Now()
	stats := Stats{}

	ex, err := p.extract(ctx, log, &stats)
	if err != nil {
		return nil, err
	}
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	return &Result{
		RunID:       runID,
		Methods:     ex.entries,
		Descriptors: ex.descriptors,
		Documented:  ex.documented,
		Bare:        ex.bare,
		Target:      p.cfg.Target,
		Stats:       stats,
	}, nil
}

// Run executes one full pass: read, extract, merge, enrich, emit, patch,
// optionally verify, write. No retries. On error nothing is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	totalStart := time.Now()
	stats := Stats{}
	result := &Result{RunID: runID, Target: p.cfg.Target}

	// Phases 1-3: Read, Extract, Enrich
	ex, err := p.extract(ctx, log, &stats)
	if err != nil {
		return nil, err
	}
	result.Methods = ex.entries
	result.Descriptors = ex.descriptors
	result.Documented = ex.documented
	result.Bare = ex.bare

	if len(ex.entries) == 0 {
		msg := "no methods extracted; the generated block will be empty"
		if p.cfg.Strict {
			return nil, fmt.Errorf("%w: %s", ErrStrict, msg)
		}
		log.Warn(msg, "files", ex.files)
		result.Warnings = append(result.Warnings, msg)
	}

	// Phase 4: Emit
	emitStart := time.Now()
	block, err := emitter.Emit(ex.entries, p.cfg.Emit)
	if err != nil {
		return nil, fmt.Errorf("emit failed: %w", err)
	}
	stats.EmitMs = time.Since(emitStart).Milliseconds()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 5: Patch
	patchStart := time.Now()
	original, err := os.ReadFile(p.cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to read target %s: %w", p.cfg.Target, err)
	}

	patched, found := patcher.Patch(string(original), block, p.cfg.Anchor)
	result.AnchorFound = found
	result.Changed = patched != string(original)
	stats.PatchMs = time.Since(patchStart).Milliseconds()

	if !found {
		msg := fmt.Sprintf("anchor %q ... %q not found in %s; target left unchanged", p.cfg.Anchor.Begin, p.cfg.Anchor.End, p.cfg.Target)
		if p.cfg.Strict {
			return nil, fmt.Errorf("%w: %s", ErrStrict, msg)
		}
		log.Warn(msg)
		result.Warnings = append(result.Warnings, msg)
	}

	log.Info("patch complete", "anchor_found", found, "changed", result.Changed, "ms", stats.PatchMs)

	// Phase 6: Verify (optional)
	if p.cfg.VerifySyntax && result.Changed {
		if err := p.verify(log, []byte(patched), result, &stats); err != nil {
			return nil, err
		}
	}

	// Phase 7: Write
	switch {
	case p.cfg.DryRun:
		diff, err := patcher.Diff(p.cfg.Target, string(original), patched)
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s: %w", p.cfg.Target, err)
		}
		result.Diff = diff
	case result.Changed:
		if err := patcher.WriteFile(p.cfg.Target, []byte(patched)); err != nil {
			return nil, fmt.Errorf("failed to write target: %w", err)
		}
		result.Written = true
	}

	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
	result.Stats = stats

	log.Info("run complete",
		"methods", len(result.Methods),
		"written", result.Written,
		"dry_run", p.cfg.DryRun,
		"ms", stats.TotalTimeMs)

	return result, nil
}

func (p *Pipeline) extract(ctx context.Context, log *slog.Logger, stats *Stats) (*extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 1: Read
	readStart := time.Now()
	bundle, err := source.Load(p.cfg.Source, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	stats.SourceFiles = len(bundle.Files)
	stats.SourceBytes = len(bundle.Text)
	stats.ReadTimeMs = time.Since(readStart).Milliseconds()

	log.Debug("read complete", "files", stats.SourceFiles, "bytes", stats.SourceBytes, "ms", stats.ReadTimeMs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: Extract (both passes) and merge
	extractStart := time.Now()
	documented := extractor.ExtractDocumented(bundle.Text)
	bare := extractor.ExtractBare(bundle.Text, extractor.BareOptions{Lookahead: p.cfg.Lookahead})
	merged := extractor.Merge(documented, bare)
	stats.Documented = len(documented)
	stats.Bare = len(bare)
	stats.Methods = len(merged)
	stats.ExtractMs = time.Since(extractStart).Milliseconds()

	log.Info("extraction complete",
		"documented", len(documented), "bare", len(bare), "methods", len(merged), "ms", stats.ExtractMs)

	// Phase 3: Enrich
	enriched := p.resolver.Enrich(merged)

	return &extraction{
		files:       bundle.Files,
		descriptors: enriched,
		entries:     emitter.Entries(enriched),
		documented:  len(documented),
		bare:        len(bare),
	}, nil
}

func (p *Pipeline) verify(log *slog.Logger, patched []byte, result *Result, stats *Stats) error {
	if !parser.Supported(p.cfg.Target) {
		log.Debug("syntax check skipped, unsupported extension", "target", p.cfg.Target)
		return nil
	}

	verifyStart := time.Now()
	issues, err := p.pm.CheckSyntax(patched, p.cfg.Target)
	stats.VerifyMs = time.Since(verifyStart).Milliseconds()
	if err != nil {
		return fmt.Errorf("syntax check failed: %w", err)
	}
	stats.Issues = len(issues)
	if len(issues) == 0 {
		return nil
	}

	msg := fmt.Sprintf("patched %s has %d syntax issue(s), first at %s", p.cfg.Target, len(issues), issues[0])
	if p.cfg.Strict {
		return fmt.Errorf("%w: %s", ErrStrict, msg)
	}
	log.Warn(msg)
	result.Warnings = append(result.Warnings, msg)
	return nil
}
