// Package checksum fingerprints note content for the run journal.
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

const prefix = "sha256:"

var bom = []byte{0xef, 0xbb, 0xbf}

// Note returns a digest of markdown content that ignores a leading UTF-8 BOM
// and CRLF line endings, so the same note exported on different platforms
// yields the same value.
func Note(data []byte) string {
	data = bytes.TrimPrefix(data, bom)
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	h := sha256.Sum256(data)
	return prefix + hex.EncodeToString(h[:])
}
