// Package imageio loads images from local paths, URLs, data URIs and in-memory buffers.
package imageio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-cleanhttp"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageBytes caps how much is read from any single source.
const MaxImageBytes = 64 << 20

// Loader resolves image sources into decoded images.
type Loader struct {
	client *http.Client
}

// NewLoader returns a loader fetching remote images with client.
// A nil client uses a pooled cleanhttp client.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	return &Loader{client: client}
}

var defaultLoader = NewLoader(nil)

// Load decodes src with the package default loader.
func Load(ctx context.Context, src any, timeout time.Duration) (image.Image, error) {
	return defaultLoader.Load(ctx, src, timeout)
}

// Load decodes src, which may be an image.Image, a []byte, an io.Reader, or a string
// holding an http(s) URL, a base64 data URI or a local file path.
// A positive timeout bounds the whole fetch and decode.
func (l *Loader) Load(ctx context.Context, src any, timeout time.Duration) (image.Image, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch v := src.(type) {
	case nil:
		return nil, &ImageLoadError{Source: "<nil>", Err: errors.New("no image given")}
	case image.Image:
		return v, nil
	case []byte:
		return decode(ctx, "<bytes>", v)
	case io.Reader:
		data, err := readAll(v)
		if err != nil {
			return nil, &ImageLoadError{Source: "<reader>", Err: err}
		}
		return decode(ctx, "<reader>", data)
	case string:
		return l.loadString(ctx, v)
	default:
		return nil, &ImageLoadError{
			Source: fmt.Sprintf("%T", src),
			Err:    errors.New("expected a path, a URL, a data URI, raw bytes, a reader or an image"),
		}
	}
}

func (l *Loader) loadString(ctx context.Context, s string) (image.Image, error) {
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		data, err := l.fetch(ctx, s)
		if err != nil {
			return nil, &ImageLoadError{Source: s, Err: err}
		}
		return decode(ctx, s, data)
	case strings.HasPrefix(s, "data:"):
		data, err := decodeDataURI(s)
		if err != nil {
			return nil, &ImageLoadError{Source: "<data uri>", Err: err}
		}
		return decode(ctx, "<data uri>", data)
	default:
		f, err := os.Open(s)
		if err != nil {
			return nil, &ImageLoadError{Source: s, Err: err}
		}
		defer f.Close()
		data, err := readAll(f)
		if err != nil {
			return nil, &ImageLoadError{Source: s, Err: err}
		}
		return decode(ctx, s, data)
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readAll(resp.Body)
}

func decodeDataURI(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("only base64 data URIs are supported")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxImageBytes)
	}
	return data, nil
}

func decode(ctx context.Context, source string, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ImageLoadError{Source: source, Err: err}
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, &ImageLoadError{Source: source, Err: fmt.Errorf("unsupported content type %s", mtype.String())}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageLoadError{Source: source, Err: fmt.Errorf("decode %s: %w", mtype.String(), err)}
	}
	return img, nil
}
