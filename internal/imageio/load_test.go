package imageio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoad_Sources(t *testing.T) {
	data := pngBytes(t, 4, 3)

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	tests := []struct {
		name string
		src  any
	}{
		{name: "bytes", src: data},
		{name: "reader", src: bytes.NewReader(data)},
		{name: "path", src: path},
		{name: "url", src: srv.URL + "/cat.png"},
		{name: "data uri", src: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)},
		{name: "image", src: decoded},
	}

	loader := NewLoader(srv.Client())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := loader.Load(context.Background(), tt.src, 0)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
		})
	}
}

func TestLoad_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		src  any
	}{
		{name: "missing file", src: filepath.Join(t.TempDir(), "nope.png")},
		{name: "not found", src: srv.URL + "/missing.png"},
		{name: "html body", src: srv.URL + "/page"},
		{name: "garbage bytes", src: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}},
		{name: "plain data uri", src: "data:text/plain,hello"},
		{name: "nil", src: nil},
		{name: "unsupported type", src: 3.14},
	}

	loader := NewLoader(srv.Client())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.src, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrImageLoad))

			var loadErr *ImageLoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}
}

func TestLoad_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewLoader(srv.Client()).Load(context.Background(), srv.URL, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImageLoad))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
