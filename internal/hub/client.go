// Package hub fetches model snapshots (configs, preprocessor configs and ONNX weights) from a
// HuggingFace-compatible model hub into a local cache.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
)

// Defaults.
const (
	DefaultEndpoint = "https://huggingface.co"
	DefaultRevision = "main"
)

// File is one file of a snapshot.
type File struct {
	Name     string
	Optional bool
}

// ModelFiles are the files a model snapshot is made of.
var ModelFiles = []File{
	{Name: "config.json", Optional: true},
	{Name: "preprocessor_config.json", Optional: true},
	{Name: "tokenizer_config.json", Optional: true},
	{Name: "tokenizer.json", Optional: true},
	{Name: "model.onnx"},
}

// Request selects what to fetch.
type Request struct {
	// Revision is a branch, tag or commit; empty means DefaultRevision.
	Revision string

	// Token is sent as a bearer token when set.
	Token string

	// Files defaults to ModelFiles.
	Files []File
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	CacheDir   string
	Offline    bool
	HTTPClient *http.Client
	Manifest   *Manifest
	Logger     *slog.Logger
}

// Client downloads snapshots and reuses cached ones.
type Client struct {
	endpoint string
	cacheDir string
	offline  bool
	http     *http.Client
	manifest *Manifest
	log      *slog.Logger
}

// New returns a client. The manifest is required for caching across calls.
func New(opts Options) *Client {
	c := &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		cacheDir: opts.CacheDir,
		offline:  opts.Offline,
		http:     opts.HTTPClient,
		manifest: opts.Manifest,
		log:      opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.http == nil {
		c.http = cleanhttp.DefaultPooledClient()
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Manifest returns the snapshot manifest, or nil.
func (c *Client) Manifest() *Manifest {
	return c.manifest
}

// Snapshot resolves id to a local directory. An id naming an existing directory is used in
// place. Otherwise a complete cached snapshot is reused, or the files are downloaded.
func (c *Client) Snapshot(ctx context.Context, id string, req Request) (*Snapshot, error) {
	if id == "" {
		return nil, errors.New("hub: empty model id")
	}
	files := req.Files
	if len(files) == 0 {
		files = ModelFiles
	}

	if info, err := os.Stat(id); err == nil && info.IsDir() {
		return localSnapshot(id, files)
	}

	revision := req.Revision
	if revision == "" {
		revision = DefaultRevision
	}

	if cached, ok := c.cached(id, revision, files); ok {
		c.log.Debug("using cached snapshot", "model", id, "revision", revision, "dir", cached.Dir)
		return cached, nil
	}
	if c.offline {
		return nil, fmt.Errorf("%s@%s: %w", id, revision, ErrOffline)
	}
	if c.cacheDir == "" {
		return nil, errors.New("hub: no cache directory configured")
	}

	dir := filepath.Join(c.cacheDir, "models--"+strings.ReplaceAll(id, "/", "--"), "snapshots", revision)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("hub: %w", err)
	}

	client := c.clientFor(ctx, req.Token)
	snap := &Snapshot{ID: id, Revision: revision, Dir: dir}
	for _, f := range files {
		start := time.Now()
		err := c.download(ctx, client, id, revision, f.Name, dir)
		if err != nil {
			if f.Optional && errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		snap.Files = append(snap.Files, f.Name)
		c.log.Debug("downloaded", "model", id, "file", f.Name, "elapsed", time.Since(start))
	}
	snap.FetchedAt = time.Now().UTC()

	if c.manifest != nil {
		if err := c.manifest.Put(snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (c *Client) cached(id, revision string, files []File) (*Snapshot, bool) {
	if c.manifest == nil {
		return nil, false
	}
	snap, ok, err := c.manifest.Get(id, revision)
	if err != nil || !ok {
		return nil, false
	}
	for _, f := range files {
		if !f.Optional && !snap.Has(f.Name) {
			return nil, false
		}
	}
	for _, name := range snap.Files {
		if _, err := os.Stat(filepath.Join(snap.Dir, name)); err != nil {
			return nil, false
		}
	}
	return snap, true
}

func (c *Client) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// FileURL returns the download URL of a file at a revision.
func (c *Client) FileURL(id, revision, name string) string {
	return fmt.Sprintf("%s/%s/resolve/%s/%s", c.endpoint, id, url.PathEscape(revision), name)
}

func (c *Client) download(ctx context.Context, client *http.Client, id, revision, name, dir string) error {
	u := c.FileURL(id, revision, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: u, StatusCode: resp.StatusCode}
	}

	// Write next to the target and rename so readers never see partial files.
	suffix, err := gonanoid.New(10)
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	tmp := filepath.Join(dir, "."+name+"."+suffix+".part")
	f, err := os.Create(tmp) //nolint:gosec // path is built from the cache dir.
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	digest := newDigestWriter()
	if _, err := io.Copy(io.MultiWriter(f, digest), resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("hub: download %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("hub: %w", err)
	}
	if err := digest.verify(name, expectedDigest(resp.Header)); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, name))
}

func localSnapshot(dir string, files []File) (*Snapshot, error) {
	snap := &Snapshot{ID: dir, Dir: dir, Local: true}
	for _, f := range files {
		_, err := os.Stat(filepath.Join(dir, f.Name))
		switch {
		case err == nil:
			snap.Files = append(snap.Files, f.Name)
		case f.Optional:
		default:
			return nil, fmt.Errorf("hub: %s: %w", filepath.Join(dir, f.Name), ErrNotFound)
		}
	}
	return snap, nil
}
