package util

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// SniffMime detects the handful of formats the service cares about by magic bytes.
func SniffMime(b []byte) string {
	// PDF: %PDF-
	if len(b) >= 5 && b[0] == '%' && b[1] == 'P' && b[2] == 'D' && b[3] == 'F' && b[4] == '-' {
		return "application/pdf"
	}
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

// PickMIME prefers the declared MIME (parameters stripped), then sniffs the bytes.
func PickMIME(declared string, data []byte) string {
	if d := strings.TrimSpace(declared); d != "" && d != "application/octet-stream" {
		if i := strings.IndexByte(d, ';'); i >= 0 {
			d = d[:i]
		}
		return strings.ToLower(strings.TrimSpace(d))
	}
	return SniffMime(data)
}

func SHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
