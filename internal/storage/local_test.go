package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Save(ctx, "../../etc/contract.pdf", "application/pdf", strings.NewReader("signed"), 6)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, "-contract.pdf"))

	r, err := store.Open(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "signed", string(body))

	require.NoError(t, store.Delete(ctx, path))
	require.NoError(t, store.Delete(ctx, path), "deleting a missing file is not an error")
	_, err = store.Open(ctx, path)
	assert.Error(t, err)
}

func TestKeyFromPublicPathRejectsTraversal(t *testing.T) {
	for _, p := range []string{"/uploads/", "/other/x", "/uploads/a/b", "/uploads/..", "x"} {
		_, err := keyFromPublicPath("/uploads", p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
	key, err := keyFromPublicPath("/uploads/", "/uploads/abc-file.png")
	require.NoError(t, err)
	assert.Equal(t, "abc-file.png", key)
}
