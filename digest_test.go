package kcgx

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestHA2_RequiresDigestAuthorization(t *testing.T) {
	_, ok := digestHA2("Basic dXNlcjpwYXNz", "GET", "/script.cgi", "/a", nil)
	assert.False(t, ok)
}

func TestDigestHA2_ComputesMD5OfMethodURIBody(t *testing.T) {
	sum, ok := digestHA2("Digest username=\"u\"", "POST", "/script.cgi", "/a/b", []byte("body"))
	require.True(t, ok)

	h := md5.New()
	h.Write([]byte("POST"))
	h.Write([]byte(":"))
	h.Write([]byte("/script.cgi/a/b"))
	h.Write([]byte(":"))
	h.Write([]byte("body"))
	var want [16]byte
	copy(want[:], h.Sum(nil))
	assert.Equal(t, want, sum)
}

func TestDigestHA2_CaseInsensitiveScheme(t *testing.T) {
	_, ok := digestHA2("  digest foo=\"bar\"", "GET", "", "", nil)
	assert.True(t, ok)
}

func TestBodyMD5(t *testing.T) {
	got := bodyMD5([]byte("hello"))
	assert.Equal(t, md5.Sum([]byte("hello")), got)
}
