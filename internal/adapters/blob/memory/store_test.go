package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"petora-connect/internal/ports/blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "1-buddy.png", "image/png", strings.NewReader("png-bytes"), 9))

	obj, err := s.Get(ctx, "1-buddy.png")
	require.NoError(t, err)
	defer obj.Body.Close()

	b, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(9), obj.Size)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}
