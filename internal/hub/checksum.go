package hub

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"strings"
)

// ErrChecksumMismatch is returned when downloaded content does not match the digest the
// hub advertised for it.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// expectedDigest returns the SHA-256 the hub advertises for a large file, if any.
// LFS-backed files carry it as their linked ETag.
func expectedDigest(h http.Header) string {
	for _, key := range []string{"X-Linked-Etag", "ETag"} {
		v := strings.Trim(strings.TrimPrefix(h.Get(key), "W/"), `"`)
		if len(v) == sha256.Size*2 {
			if _, err := hex.DecodeString(v); err == nil {
				return strings.ToLower(v)
			}
		}
	}
	return ""
}

// digestWriter hashes what is written through it.
type digestWriter struct {
	hash.Hash
}

func newDigestWriter() *digestWriter {
	return &digestWriter{Hash: sha256.New()}
}

func (d *digestWriter) verify(name, want string) error {
	if want == "" {
		return nil
	}
	if got := hex.EncodeToString(d.Sum(nil)); got != want {
		return fmt.Errorf("hub: %s: %w (want %s, got %s)", name, ErrChecksumMismatch, want, got)
	}
	return nil
}
