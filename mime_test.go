package kcgx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMIMEHeaders_BareAndQuotedParams(t *testing.T) {
	buf := []byte("Content-Disposition: form-data; name=\"f\"; filename=foo.txt\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body follows")
	pos := 0
	cfg := DefaultConfig()
	desc, err := parseMIMEHeaders(buf, &pos, cfg)
	require.NoError(t, err)
	assert.Equal(t, "form-data", desc.Disposition)
	assert.Equal(t, "f", desc.Name)
	assert.Equal(t, "foo.txt", desc.Filename)
	assert.Equal(t, "text/plain", desc.ContentType)
	assert.Equal(t, "body follows", string(buf[pos:]))
}

func TestParseMIMEHeaders_UnknownHeaderIgnored(t *testing.T) {
	buf := []byte("X-Custom: whatever\r\nContent-Type: application/json\r\n\r\n")
	pos := 0
	desc, err := parseMIMEHeaders(buf, &pos, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "application/json", desc.ContentType)
}

func TestParseMIMEHeaders_NoColonIsFatal(t *testing.T) {
	buf := []byte("not a header line\r\n\r\n")
	pos := 0
	_, err := parseMIMEHeaders(buf, &pos, DefaultConfig())
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestSplitMIMEParams_Quoted(t *testing.T) {
	main, params := splitMIMEParams(`form-data; name="f"; filename="a b.txt"`)
	assert.Equal(t, "form-data", main)
	assert.Equal(t, "f", params["name"])
	assert.Equal(t, "a b.txt", params["filename"])
}

func TestSplitMIMEParams_Bare(t *testing.T) {
	main, params := splitMIMEParams("multipart/mixed; boundary=XYZ")
	assert.Equal(t, "multipart/mixed", main)
	assert.Equal(t, "XYZ", params["boundary"])
}

func TestSplitMIMEParams_NoParams(t *testing.T) {
	main, params := splitMIMEParams("text/plain")
	assert.Equal(t, "text/plain", main)
	assert.Empty(t, params)
}
