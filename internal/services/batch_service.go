package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// DefaultWorkers is used when a batch is configured with no worker count
const DefaultWorkers = 4

// Job is one cache file queued for decryption
type Job struct {
	Path     string
	Group    string
	TargetID string

	// Store is the decoded key store, shared read-only between jobs
	Store types.Node

	// StoreErr is set when the group's key store could not be loaded; the job
	// fails with it without being processed
	StoreErr error
}

// Result is the outcome of one job
type Result struct {
	Path       string
	Group      string
	TargetID   string
	State      types.PipelineState
	Artifact   *types.DecryptedArtifact
	OutputPath string
	Err        error
	Duration   time.Duration
}

// BatchService processes cache files concurrently. A failing file never stops
// the others.
type BatchService struct {
	processor interfaces.CacheFileProcessor
	writer    interfaces.ArtifactWriter
	workers   int
	logger    zerolog.Logger
}

// NewBatchService creates a batch driver. writer may be nil to skip writing
// artifacts.
func NewBatchService(processor interfaces.CacheFileProcessor, writer interfaces.ArtifactWriter, workers int, logger zerolog.Logger) *BatchService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &BatchService{
		processor: processor,
		writer:    writer,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes every job and returns the results in job order
func (b *BatchService) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(b.workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = b.runJob(ctx, job)
			return nil
		})
	}

	// Jobs report failures through their results, never through the group
	_ = g.Wait()

	return results
}

func (b *BatchService) runJob(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{
		Path:     job.Path,
		Group:    job.Group,
		TargetID: job.TargetID,
		State:    types.StateUnprocessed,
	}

	finish := func(err error) Result {
		result.Duration = time.Since(start)
		result.Err = err
		if err != nil {
			result.State = types.StateFailed
			b.logger.Warn().
				Str("file", job.Path).
				Str("target", job.TargetID).
				Str("error_kind", types.ErrorKind(err)).
				Err(err).
				Msg("cache file failed")
			return result
		}
		result.State = types.StateDone
		b.logger.Info().
			Str("file", job.Path).
			Str("target", job.TargetID).
			Str("class", result.Artifact.Class.String()).
			Str("output", result.OutputPath).
			Dur("took", result.Duration).
			Msg("cache file decrypted")
		return result
	}

	if err := ctx.Err(); err != nil {
		return finish(&types.PipelineError{Path: job.Path, Stage: types.StateUnprocessed, Err: err})
	}
	if job.StoreErr != nil {
		return finish(&types.PipelineError{Path: job.Path, Stage: types.StateUnprocessed, Err: job.StoreErr})
	}
	if job.Store == nil {
		return finish(&types.PipelineError{
			Path:  job.Path,
			Stage: types.StateUnprocessed,
			Err:   &types.KeyNotFoundError{TargetID: job.TargetID},
		})
	}

	artifact, err := b.processor.ProcessFile(job.Path, job.TargetID, job.Store)
	if err != nil {
		return finish(err)
	}
	result.Artifact = artifact
	result.State = types.StateClassified

	if b.writer != nil {
		out, err := b.writer.Write(ctx, job.Path, artifact)
		if err != nil {
			return finish(&types.PipelineError{
				Path:  job.Path,
				Stage: types.StateClassified,
				Err:   fmt.Errorf("failed to write artifact: %w", err),
			})
		}
		result.OutputPath = out
	}

	return finish(nil)
}

// Summary counts batch outcomes
type Summary struct {
	Total     int            `json:"total" yaml:"total"`
	Succeeded int            `json:"succeeded" yaml:"succeeded"`
	Failed    int            `json:"failed" yaml:"failed"`
	ByKind    map[string]int `json:"by_kind,omitempty" yaml:"by_kind,omitempty"`
}

// Summarize counts successes and failures per error kind
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results), ByKind: make(map[string]int)}
	for _, r := range results {
		if r.Err == nil {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		summary.ByKind[types.ErrorKind(r.Err)]++
	}
	return summary
}
