package main

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkboard/internal/config"
	"linkboard/internal/store"
)

func TestOpenStoreMemory(t *testing.T) {
	gw, closeFn, err := openStore(config.DatabaseConfig{Driver: "memory"}, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &store.MemoryStore{}, gw)
	assert.NoError(t, gw.Ping(context.Background()))
}
