package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundtrip(t *testing.T, s ObjectStore) {
	t.Helper()
	ctx := context.Background()

	payload := "<?xml version=\"1.0\"?><nfeProc/>"
	require.NoError(t, s.Put(ctx, "uploads/1/nota.xml", strings.NewReader(payload), int64(len(payload)), "application/xml"))

	rc, err := s.Get(ctx, "uploads/1/nota.xml")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, string(data))

	// overwrite keeps the latest content
	require.NoError(t, s.Put(ctx, "uploads/1/nota.xml", strings.NewReader("v2"), 2, "application/xml"))
	rc, err = s.Get(ctx, "uploads/1/nota.xml")
	require.NoError(t, err)
	data, err = io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "v2", string(data))

	require.NoError(t, s.Delete(ctx, "uploads/1/nota.xml"))
	_, err = s.Get(ctx, "uploads/1/nota.xml")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, s.Delete(ctx, "uploads/1/nota.xml"))

	_, err = s.Get(ctx, "uploads/2/nunca-existiu.xml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore(t *testing.T) {
	roundtrip(t, NewMemStore())
}

func TestDiskStore(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	roundtrip(t, s)
}
