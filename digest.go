package kcgx

import (
	"crypto/md5"
	"strings"
)

// digestHA2 computes the HA2 component of RFC 2617 Digest authentication:
// MD5(method ":" script-name path-info ":" body). Missing components are
// treated as empty strings. Returns ok=false when no Authorization:
// Digest header is present, in which case the caller sends a
// zero-length blob instead of the 16-byte digest.
func digestHA2(authorization, method, scriptName, pathInfo string, body []byte) (sum [16]byte, ok bool) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(authorization)), "digest") {
		return sum, false
	}
	uri := scriptName + pathInfo
	h := md5.New()
	h.Write([]byte(method))
	h.Write([]byte(":"))
	h.Write([]byte(uri))
	h.Write([]byte(":"))
	h.Write(body)
	copy(sum[:], h.Sum(nil))
	return sum, true
}

// bodyMD5 computes the MD5 digest of the whole raw request body, emitted
// as the body MD5 record after the body pairs.
func bodyMD5(body []byte) [16]byte {
	return md5.Sum(body)
}
