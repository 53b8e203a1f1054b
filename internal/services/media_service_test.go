package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"rentshare_backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLocalMedia(t *testing.T) (MediaService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/media/"})
	require.NoError(t, err)
	return NewMediaService(store, nil), store
}

func TestStoreImageBytes_ExtensionFromContent(t *testing.T) {
	ctx := context.Background()
	media, store := newLocalMedia(t)

	data := append(pngBytes(t), []byte("<script>alert(1)</script>")...)
	photo, err := media.StoreImageBytes(ctx, "listings", "evil.html", data)
	require.NoError(t, err)

	assert.Equal(t, ".png", filepath.Ext(photo.ImageKey))
	assert.NotContains(t, photo.ImageURL, ".html")
	for _, v := range photo.Variants {
		key := v.(map[string]interface{})["key"].(string)
		assert.NotEqual(t, ".html", filepath.Ext(key))
	}

	rc, err := store.Get(ctx, photo.ImageKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestStoreImageBytes_NoExtension(t *testing.T) {
	media, _ := newLocalMedia(t)

	photo, err := media.StoreImageBytes(context.Background(), "listings", "upload", pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(photo.ImageKey))
}

func TestStoreImageBytes_RejectsNonImage(t *testing.T) {
	media, _ := newLocalMedia(t)

	_, err := media.StoreImageBytes(context.Background(), "listings", "a.jpg", []byte("<html></html>"))
	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, appErr.HTTPCode)
}
