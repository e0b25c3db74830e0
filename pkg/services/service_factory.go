// Package services wires the decryption services together for the command
// handlers and for programs embedding the decryptor.
package services

import (
	"sync"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	core "github.com/deploymenttheory/go-findmy/internal/services"
)

// ServiceFactory builds the decryption services once and hands out shared
// instances. All accessors are safe for concurrent use.
type ServiceFactory struct {
	opts Options

	mu          sync.Mutex
	decoder     *core.AEADDecoder
	processor   *core.CacheFileService
	writer      interfaces.ArtifactWriter
	batch       *core.BatchService
	initialized bool
	closed      bool
}

// NewServiceFactory creates a new service factory instance
func NewServiceFactory(opts Options) *ServiceFactory {
	return &ServiceFactory{opts: opts}
}

// Initialize builds every service. It is called implicitly by the accessors.
func (sf *ServiceFactory) Initialize() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.initLocked()
}

func (sf *ServiceFactory) initLocked() error {
	if sf.closed {
		return ErrFactoryShutdown
	}
	if sf.initialized {
		return nil
	}

	logger := sf.opts.Logger

	// The pipeline is the foundation; the batch driver depends on it
	sf.decoder = core.NewAEADDecoder(logger)
	sf.processor = core.NewCacheFileService(logger, sf.opts.PayloadField)
	if sf.opts.WriteArtifacts {
		sf.writer = core.NewFileArtifactWriter(sf.opts.OutputDir)
	}
	sf.batch = core.NewBatchService(sf.processor, sf.writer, sf.opts.Workers, logger)

	sf.initialized = true
	return nil
}

// Decoder returns the payload decoder
func (sf *ServiceFactory) Decoder() (*core.AEADDecoder, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.initLocked(); err != nil {
		return nil, err
	}
	return sf.decoder, nil
}

// Processor returns the single-file pipeline
func (sf *ServiceFactory) Processor() (interfaces.CacheFileProcessor, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.initLocked(); err != nil {
		return nil, err
	}
	return sf.processor, nil
}

// Writer returns the artifact writer, nil when writing is disabled
func (sf *ServiceFactory) Writer() (interfaces.ArtifactWriter, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.initLocked(); err != nil {
		return nil, err
	}
	return sf.writer, nil
}

// Batch returns the batch driver
func (sf *ServiceFactory) Batch() (*core.BatchService, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.initLocked(); err != nil {
		return nil, err
	}
	return sf.batch, nil
}

// Shutdown releases the services. The factory cannot be used afterwards.
func (sf *ServiceFactory) Shutdown() {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.decoder = nil
	sf.processor = nil
	sf.writer = nil
	sf.batch = nil
	sf.initialized = false
	sf.closed = true
}

// IsInitialized returns whether the factory has been initialized
func (sf *ServiceFactory) IsInitialized() bool {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.initialized
}

// ListAvailableServices returns information about the services the factory builds
func (sf *ServiceFactory) ListAvailableServices() []ServiceInfo {
	return []ServiceInfo{
		{
			Name:        "decoder",
			Description: "ChaCha20-Poly1305 payload decoder",
			Available:   true,
		},
		{
			Name:        "processor",
			Description: "Single cache file pipeline: key resolution, decryption, classification",
			Available:   true,
		},
		{
			Name:        "writer",
			Description: "Decrypted artifact writer",
			Available:   sf.opts.WriteArtifacts,
		},
		{
			Name:        "batch",
			Description: "Concurrent cache file driver",
			Available:   true,
		},
	}
}
