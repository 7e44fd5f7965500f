package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManifest(t *testing.T) *Manifest {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewManifest(db)
}

type fakeHub struct {
	files    map[string]string
	etags    map[string]string
	requests atomic.Int32
	lastAuth atomic.Value
	token    string
}

func (h *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.requests.Add(1)
	h.lastAuth.Store(r.Header.Get("Authorization"))
	if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, ok := h.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if etag, ok := h.etags[r.URL.Path]; ok {
		w.Header().Set("X-Linked-Etag", `"`+etag+`"`)
	}
	_, _ = w.Write([]byte(body))
}

func newHub(t *testing.T, h *fakeHub) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		Endpoint:   srv.URL,
		CacheDir:   t.TempDir(),
		HTTPClient: srv.Client(),
		Manifest:   setupManifest(t),
	}), srv.URL
}

func TestSnapshot_DownloadsAndCaches(t *testing.T) {
	h := &fakeHub{
		token: "secret",
		files: map[string]string{
			"/amd/yolox-s/resolve/v2/config.json": `{"library_name": "yolox"}`,
			"/amd/yolox-s/resolve/v2/model.onnx":  "onnx-bytes",
		},
	}
	c, _ := newHub(t, h)
	ctx := context.Background()

	snap, err := c.Snapshot(ctx, "amd/yolox-s", Request{Revision: "v2", Token: "secret"})
	require.NoError(t, err)
	assert.Equal(t, []string{"config.json", "model.onnx"}, snap.Files)
	assert.Equal(t, "v2", snap.Revision)
	assert.False(t, snap.Local)
	assert.Equal(t, "Bearer secret", h.lastAuth.Load())

	data, err := os.ReadFile(filepath.Join(snap.Dir, "model.onnx"))
	require.NoError(t, err)
	assert.Equal(t, "onnx-bytes", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(snap.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	before := h.requests.Load()
	again, err := c.Snapshot(ctx, "amd/yolox-s", Request{Revision: "v2", Token: "secret"})
	require.NoError(t, err)
	assert.Equal(t, snap.Dir, again.Dir)
	assert.Equal(t, before, h.requests.Load())
}

func TestSnapshot_DefaultRevisionWithoutToken(t *testing.T) {
	h := &fakeHub{files: map[string]string{"/amd/resnet50/resolve/main/model.onnx": "x"}}
	c, _ := newHub(t, h)

	snap, err := c.Snapshot(context.Background(), "amd/resnet50", Request{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRevision, snap.Revision)
	assert.Empty(t, h.lastAuth.Load())
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		hub  *fakeHub
		req  Request
		want error
	}{
		{name: "missing weights", hub: &fakeHub{files: map[string]string{}}, want: ErrNotFound},
		{name: "bad token", hub: &fakeHub{token: "right", files: map[string]string{}}, req: Request{Token: "wrong"}, want: ErrUnauthorized},
		{name: "no token for private model", hub: &fakeHub{token: "right", files: map[string]string{}}, want: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newHub(t, tt.hub)
			_, err := c.Snapshot(context.Background(), "org/private", tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			var httpErr *HTTPError
			assert.True(t, errors.As(err, &httpErr))
		})
	}
}

func TestSnapshot_Offline(t *testing.T) {
	h := &fakeHub{files: map[string]string{"/amd/yolox-s/resolve/main/model.onnx": "x"}}
	c, srvURL := newHub(t, h)
	ctx := context.Background()

	offline := New(Options{Endpoint: srvURL, CacheDir: t.TempDir(), Offline: true, Manifest: c.Manifest()})
	_, err := offline.Snapshot(ctx, "amd/yolox-s", Request{})
	assert.True(t, errors.Is(err, ErrOffline))

	_, err = c.Snapshot(ctx, "amd/yolox-s", Request{})
	require.NoError(t, err)

	snap, err := offline.Snapshot(ctx, "amd/yolox-s", Request{})
	require.NoError(t, err)
	assert.True(t, snap.Has("model.onnx"))
}

func TestSnapshot_LocalDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.onnx"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preprocessor_config.json"), []byte("{}"), 0o600))

	c := New(Options{})
	snap, err := c.Snapshot(context.Background(), dir, Request{})
	require.NoError(t, err)
	assert.True(t, snap.Local)
	assert.Equal(t, []string{"preprocessor_config.json", "model.onnx"}, snap.Files)

	_, err = c.Snapshot(context.Background(), t.TempDir(), Request{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManifest_ListAndDelete(t *testing.T) {
	m := setupManifest(t)
	require.NoError(t, m.Put(&Snapshot{ID: "amd/yolox-s", Revision: "main", Files: []string{"model.onnx"}}))
	require.NoError(t, m.Put(&Snapshot{ID: "amd/resnet50", Revision: "main"}))

	all, err := m.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "amd/resnet50", all[0].ID)

	require.NoError(t, m.Delete("amd/resnet50", "main"))
	_, ok, err := m.Get("amd/resnet50", "main")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := m.Get("amd/yolox-s", "main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Has("model.onnx"))
}

func TestSnapshot_VerifiesLinkedEtag(t *testing.T) {
	sum := sha256.Sum256([]byte("onnx-bytes"))
	good := hex.EncodeToString(sum[:])
	bad := hex.EncodeToString(make([]byte, sha256.Size))

	h := &fakeHub{
		files: map[string]string{
			"/amd/yolox-s/resolve/main/model.onnx": "onnx-bytes",
			"/amd/yolox-s/resolve/bad/model.onnx":  "onnx-bytes",
		},
		etags: map[string]string{
			"/amd/yolox-s/resolve/main/model.onnx": good,
			"/amd/yolox-s/resolve/bad/model.onnx":  bad,
		},
	}
	c, _ := newHub(t, h)
	ctx := context.Background()

	_, err := c.Snapshot(ctx, "amd/yolox-s", Request{})
	require.NoError(t, err)

	_, err = c.Snapshot(ctx, "amd/yolox-s", Request{Revision: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))

	entries, err := os.ReadDir(filepath.Join(c.cacheDir, "models--amd--yolox-s", "snapshots", "bad"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExpectedDigest(t *testing.T) {
	digest := strings.Repeat("ab", sha256.Size)

	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{name: "linked etag", header: http.Header{"X-Linked-Etag": {`"` + digest + `"`}}, want: digest},
		{name: "weak etag", header: http.Header{"Etag": {`W/"` + strings.ToUpper(digest) + `"`}}, want: digest},
		{name: "git blob etag", header: http.Header{"Etag": {`"0123456789abcdef0123456789abcdef01234567"`}}},
		{name: "not hex", header: http.Header{"X-Linked-Etag": {strings.Repeat("zz", sha256.Size)}}},
		{name: "none", header: http.Header{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expectedDigest(tt.header))
		})
	}
}
