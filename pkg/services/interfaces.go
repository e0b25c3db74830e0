package services

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrFactoryShutdown is returned by accessors after Shutdown
var ErrFactoryShutdown = errors.New("service factory has been shut down")

// Options configures the services built by a ServiceFactory
type Options struct {
	// PayloadField is the cache file field holding the encrypted payload
	PayloadField string

	// Workers bounds the number of files decrypted in parallel
	Workers int

	// WriteArtifacts enables the artifact writer; OutputDir is its target
	// directory, empty meaning next to each cache file
	WriteArtifacts bool
	OutputDir      string

	Logger zerolog.Logger
}

// ServiceInfo represents information about a service
type ServiceInfo struct {
	Name        string
	Description string
	Available   bool
}
