package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/deploymenttheory/go-findmy/internal/services"
	"github.com/deploymenttheory/go-findmy/internal/testutil"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

func TestServiceFactory(t *testing.T) {
	factory := NewServiceFactory(Options{Workers: 2, Logger: zerolog.Nop()})
	assert.False(t, factory.IsInitialized())

	processor, err := factory.Processor()
	require.NoError(t, err)
	assert.NotNil(t, processor)
	assert.True(t, factory.IsInitialized())

	writer, err := factory.Writer()
	require.NoError(t, err)
	assert.Nil(t, writer)

	first, err := factory.Batch()
	require.NoError(t, err)
	second, err := factory.Batch()
	require.NoError(t, err)
	assert.Same(t, first, second)

	factory.Shutdown()
	assert.False(t, factory.IsInitialized())

	_, err = factory.Decoder()
	assert.ErrorIs(t, err, ErrFactoryShutdown)
	assert.ErrorIs(t, factory.Initialize(), ErrFactoryShutdown)
}

func TestServiceFactoryEndToEnd(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	factory := NewServiceFactory(Options{
		PayloadField:   "blob",
		WriteArtifacts: true,
		OutputDir:      outDir,
		Logger:         zerolog.Nop(),
	})

	decoder, err := factory.Decoder()
	require.NoError(t, err)
	sealed, err := decoder.Seal(testutil.KeyArray(0x0F), testutil.Nonce(0x01), []byte("owner"), nil)
	require.NoError(t, err)
	path := testutil.WriteFile(t, dir, "Owner.data", testutil.Encode(t, types.Map{"blob": types.Bytes(sealed)}))

	batch, err := factory.Batch()
	require.NoError(t, err)
	results := batch.Run(context.Background(), []core.Job{{
		Path:     path,
		TargetID: "Owner",
		Store:    testutil.KeyRecord(testutil.Key(0x0F), nil),
	}})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []byte("owner"), results[0].Artifact.Plaintext)
	assert.FileExists(t, results[0].OutputPath)
}

func TestListAvailableServices(t *testing.T) {
	infos := NewServiceFactory(Options{}).ListAvailableServices()
	require.Len(t, infos, 4)

	available := make(map[string]bool)
	for _, info := range infos {
		available[info.Name] = info.Available
	}
	assert.True(t, available["batch"])
	assert.False(t, available["writer"])
}
