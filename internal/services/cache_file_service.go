package services

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/parsers/keystore"
	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// CacheFileService runs one cache file through key resolution, decryption and
// classification. It holds no per-file state and is safe for concurrent use.
type CacheFileService struct {
	resolver     interfaces.KeyResolver
	decoder      interfaces.PayloadDecoder
	classifier   interfaces.PlaintextClassifier
	payloadField string
	logger       zerolog.Logger
}

// Ensure CacheFileService implements the CacheFileProcessor interface
var _ interfaces.CacheFileProcessor = (*CacheFileService)(nil)

// NewCacheFileService creates a pipeline reading the payload from payloadField.
// An empty payloadField selects the default encryptedData field.
func NewCacheFileService(logger zerolog.Logger, payloadField string) *CacheFileService {
	if payloadField == "" {
		payloadField = types.DefaultPayloadField
	}
	return &CacheFileService{
		resolver:     keystore.NewResolver(),
		decoder:      NewAEADDecoder(logger),
		classifier:   NewClassifier(),
		payloadField: payloadField,
		logger:       logger,
	}
}

// Process decrypts cache with the key resolved for targetID in store.
// Failures come back as *types.PipelineError wrapping the unchanged cause.
func (s *CacheFileService) Process(cache types.Node, targetID string, store types.Node) (*types.DecryptedArtifact, error) {
	state := types.StateUnprocessed
	fail := func(err error) (*types.DecryptedArtifact, error) {
		return nil, &types.PipelineError{Stage: state, Err: err}
	}

	// 1. Extract the encrypted payload
	raw, err := s.extractPayload(cache)
	if err != nil {
		return fail(err)
	}

	// 2. Resolve the key
	key, err := s.resolver.Resolve(store, targetID)
	if err != nil {
		return fail(err)
	}
	defer key.Wipe()
	state = types.StateKeyResolved

	s.logger.Debug().
		Str("target", targetID).
		Strs("key_path", key.Path).
		Int("payload_len", len(raw)).
		Msg("key resolved")

	// 3. Verify and decrypt
	plaintext, err := s.decoder.Decode(key.Symmetric, raw, nil)
	if err != nil {
		return fail(err)
	}
	state = types.StateDecrypted

	// 4. Classify
	classified := s.classifier.Classify(plaintext)
	state = types.StateClassified

	s.logger.Debug().
		Str("target", targetID).
		Int("plaintext_len", len(plaintext)).
		Str("class", classified.Class.String()).
		Str("source", string(classified.Source)).
		Msg("payload classified")

	return &types.DecryptedArtifact{
		TargetID:     targetID,
		Plaintext:    plaintext,
		Class:        classified.Class,
		Source:       classified.Source,
		Record:       classified.Record,
		RecordFormat: classified.RecordFormat,
	}, nil
}

// ProcessFile decodes the cache file at path and processes it
func (s *CacheFileService) ProcessFile(path string, targetID string, store types.Node) (*types.DecryptedArtifact, error) {
	cache, _, err := propertylist.DecodeFile(path)
	if err != nil {
		return nil, &types.PipelineError{Path: path, Stage: types.StateUnprocessed, Err: err}
	}

	artifact, err := s.Process(cache, targetID, store)
	if err != nil {
		if pe, ok := err.(*types.PipelineError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return artifact, nil
}

// extractPayload returns the payload bytes of a decoded cache file
func (s *CacheFileService) extractPayload(cache types.Node) ([]byte, error) {
	root, ok := cache.(types.Map)
	if !ok {
		return nil, &types.FormatError{
			Reason: types.FormatNotAMap,
			Detail: fmt.Sprintf("cache file root is %s", types.KindOf(cache)),
		}
	}

	field, ok := root[s.payloadField]
	if !ok {
		return nil, &types.FormatError{
			Reason: types.FormatMissingField,
			Detail: fmt.Sprintf("cache file has no %q field", s.payloadField),
		}
	}

	data, ok := field.(types.Bytes)
	if !ok {
		return nil, &types.FormatError{
			Reason: types.FormatMalformed,
			Detail: fmt.Sprintf("%q is %s, want Bytes", s.payloadField, types.KindOf(field)),
		}
	}

	return data, nil
}
