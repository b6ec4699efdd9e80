package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agora/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(&config.Config{
		MediaDir:             t.TempDir(),
		MediaBaseURL:         "/media",
		MediaMaxUploadSizeMB: 1,
	})
	require.NoError(t, err)
	return store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestDiskStore_PutAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, pngBytes(t, 32, 24), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/"))
	assert.True(t, strings.HasSuffix(url, ".webp"))

	name := strings.TrimPrefix(url, "/media/")
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.NoError(t, err)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	// Deleting an already-removed object is not an error.
	assert.NoError(t, store.Delete(ctx, url))
}

func TestDiskStore_PutRejectsGarbage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, []byte("definitely not an image"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = store.Put(ctx, nil, "image/png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestDiskStore_PutRejectsMismatchedContentType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Put(context.Background(), pngBytes(t, 8, 8), "image/gif")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestDiskStore_PutEnforcesSizeLimit(t *testing.T) {
	store, err := NewDiskStore(&config.Config{
		MediaDir:             t.TempDir(),
		MediaBaseURL:         "/media",
		MediaMaxUploadSizeMB: 0,
	})
	require.NoError(t, err)
	// Zero limit disables the check entirely.
	_, err = store.Put(context.Background(), pngBytes(t, 8, 8), "image/png")
	assert.NoError(t, err)

	limited := newTestStore(t)
	limited.maxBytes = 10
	_, err = limited.Put(context.Background(), pngBytes(t, 64, 64), "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDiskStore_DeleteRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "/media/../../etc/passwd")
	assert.Error(t, err)

	err = store.Delete(context.Background(), "/media/not-a-uuid.webp")
	assert.Error(t, err)
}

func TestResizeToFit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4096, 1024))

	resized := resizeToFit(img, MaxImageDimension, MaxImageDimension)
	b := resized.Bounds()
	assert.Equal(t, 2048, b.Dx())
	assert.Equal(t, 512, b.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, small, resizeToFit(small, MaxImageDimension, MaxImageDimension))
}
