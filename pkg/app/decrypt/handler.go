package decrypt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-findmy/internal/parsers/keystore"
	"github.com/deploymenttheory/go-findmy/internal/services"
	"github.com/deploymenttheory/go-findmy/internal/types"
	"github.com/deploymenttheory/go-findmy/pkg/app"
	appsvc "github.com/deploymenttheory/go-findmy/pkg/services"
)

// hexKeyStoreLabel stands in for a key store path when the hex input is used
const hexKeyStoreLabel = "(hex input)"

// Handle processes a decryption request. Per-file failures are reported in
// the response. An invalid request, an unreadable root or cache file and an
// undecodable hex key store are errors.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := ctx.Logger.With().Str("run", runID).Logger()
	ctx.Progress("Locating cache files...", 5)

	// 2. Decode the hex key store once; it backs every missing store
	var fallback types.Node
	if req.KeyStoreHex != "" {
		store, err := keystore.LoadHex(req.KeyStoreHex)
		if err != nil {
			return nil, app.NewError(app.ErrCodeKeyStore, "invalid hex key store", err)
		}
		fallback = store
	}

	// 3. Build jobs, loading each key store once
	var (
		jobs   []services.Job
		groups []GroupInfo
		err    error
	)
	if req.SingleFile() {
		if _, err := os.Stat(req.CacheFile); err != nil {
			return nil, app.NewError(app.ErrCodeCacheFile, "cannot access cache file", err)
		}
		jobs, groups = singleFileJobs(ctx, req, fallback)
	} else {
		jobs, groups, err = batchJobs(ctx, req, fallback)
		if err != nil {
			return nil, app.NewError(app.ErrCodeInvalidInput, "failed to discover cache files", err)
		}
	}

	if len(jobs) == 0 {
		logger.Warn().Str("root", req.RootDir).Msg("no Find My cache files found")
	}
	ctx.Progress("Decrypting cache files...", 25)

	// 4. Run the batch
	factory := appsvc.NewServiceFactory(appsvc.Options{
		PayloadField:   req.PayloadField,
		Workers:        req.Workers,
		WriteArtifacts: req.WriteArtifacts,
		OutputDir:      req.OutputDir,
		Logger:         logger,
	})
	defer factory.Shutdown()

	batch, err := factory.Batch()
	if err != nil {
		return nil, err
	}
	results := batch.Run(ctx, jobs)

	ctx.Progress("Complete", 100)

	response := &Response{
		RunID:    runID,
		Groups:   groups,
		Files:    toFileResults(results, req.Show),
		Summary:  services.Summarize(results),
		Duration: time.Since(startTime),
	}

	if err := ctx.Err(); err != nil {
		ctx.Error(fmt.Sprintf("run stopped early (%v): %d of %d cache files not processed",
			err, response.Summary.ByKind[types.KindCanceled], response.Summary.Total))
	}

	logger.Info().
		Int("total", response.Summary.Total).
		Int("succeeded", response.Summary.Succeeded).
		Int("failed", response.Summary.Failed).
		Dur("took", response.Duration).
		Msg("decryption run finished")

	return response, nil
}

// singleFileJobs builds the job for a single cache file
func singleFileJobs(ctx *app.Context, req *Request, fallback types.Node) ([]services.Job, []GroupInfo) {
	group := filepath.Base(filepath.Dir(req.CacheFile))

	targetID := req.TargetID
	if targetID == "" {
		targetID = services.TargetID(services.TargetMode(req.TargetMode), group, req.CacheFile)
	}

	info := GroupInfo{Name: group, KeyStore: req.KeyStorePath, Files: 1}
	store, storeErr := loadKeyStore(req.KeyStorePath, "key store", targetID)
	store, storeErr = withFallback(ctx, &info, store, storeErr, fallback)

	job := services.Job{
		Path:     req.CacheFile,
		Group:    group,
		TargetID: targetID,
		Store:    store,
		StoreErr: storeErr,
	}
	return []services.Job{job}, []GroupInfo{info}
}

// batchJobs discovers the cache groups under the root directory
func batchJobs(ctx *app.Context, req *Request, fallback types.Node) ([]services.Job, []GroupInfo, error) {
	discovered, err := services.Discover(req.RootDir, req.Groups)
	if err != nil {
		return nil, nil, err
	}

	var (
		jobs   []services.Job
		groups []GroupInfo
	)
	for _, dg := range discovered {
		info := GroupInfo{
			Name:     dg.Group.Name,
			Label:    dg.Group.Label,
			KeyStore: dg.KeyStorePath,
			Files:    len(dg.Files),
		}

		store, storeErr := loadKeyStore(dg.KeyStorePath, dg.Group.KeyStoreFile, dg.Group.Name)
		store, storeErr = withFallback(ctx, &info, store, storeErr, fallback)
		groups = append(groups, info)

		for _, path := range dg.Files {
			jobs = append(jobs, services.Job{
				Path:     path,
				Group:    dg.Group.Name,
				TargetID: services.TargetID(services.TargetMode(req.TargetMode), dg.Group.Name, path),
				Store:    store,
				StoreErr: storeErr,
			})
		}
	}

	return jobs, groups, nil
}

// loadKeyStore loads the key store at path. A store that is absent, either
// not located or not on disk, means no key can be found for targetID.
func loadKeyStore(path, name, targetID string) (types.Node, error) {
	if path == "" {
		return nil, fmt.Errorf("%s not found: %w", name, &types.KeyNotFoundError{TargetID: targetID})
	}

	store, err := keystore.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s not found: %w", path, &types.KeyNotFoundError{TargetID: targetID})
	}
	return store, err
}

// withFallback substitutes the hex key store for a store that failed to load
// and records the outcome on info.
func withFallback(ctx *app.Context, info *GroupInfo, store types.Node, storeErr error, fallback types.Node) (types.Node, error) {
	if storeErr == nil {
		return store, nil
	}
	if fallback == nil {
		info.KeyStoreError = storeErr.Error()
		return nil, storeErr
	}

	ctx.Log(fmt.Sprintf("%s: using hex key store (%v)", info.Name, storeErr))
	info.KeyStore = hexKeyStoreLabel
	return fallback, nil
}

// toFileResults flattens batch results for reporting
func toFileResults(results []services.Result, show bool) []FileResult {
	files := make([]FileResult, 0, len(results))
	for _, r := range results {
		file := FileResult{
			Path:       r.Path,
			Group:      r.Group,
			TargetID:   r.TargetID,
			State:      r.State.String(),
			OutputPath: r.OutputPath,
		}
		if r.Artifact != nil {
			file.Class = r.Artifact.Class.String()
			file.Source = string(r.Artifact.Source)
			file.RecordFormat = r.Artifact.RecordFormat
			file.PlaintextSize = len(r.Artifact.Plaintext)
			if show {
				file.Preview = RenderPreview(r.Artifact)
			}
		}
		if r.Err != nil {
			file.ErrorKind = types.ErrorKind(r.Err)
			file.Error = r.Err.Error()
		}
		files = append(files, file)
	}
	return files
}
