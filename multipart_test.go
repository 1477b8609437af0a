package kcgx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultipart_SingleFormDataField(t *testing.T) {
	body := []byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nHi\r\n--XYZ--")
	var fields []FormField
	err := parseMultipart(body, 0, "XYZ", "", DefaultConfig(), func(f FormField) {
		fields = append(fields, f)
	}, 0)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "f", fields[0].Name)
	assert.Equal(t, "Hi", string(fields[0].Data))
	assert.Equal(t, "text/plain", fields[0].Desc.ContentType)
}

func TestParseMultipart_NestedMultipartMixedFlattensToMultipleFields(t *testing.T) {
	inner := "--INNER\r\n" +
		"Content-Disposition: attachment; filename=\"a.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"aaa\r\n" +
		"--INNER\r\n" +
		"Content-Disposition: attachment; filename=\"b.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"bbb\r\n" +
		"--INNER--"
	outer := "--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"attachments\"\r\n" +
		"Content-Type: multipart/mixed; boundary=INNER\r\n\r\n" +
		inner +
		"\r\n--XYZ--"

	var fields []FormField
	err := parseMultipart([]byte(outer), 0, "XYZ", "", DefaultConfig(), func(f FormField) {
		fields = append(fields, f)
	}, 0)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "attachments", fields[0].Name)
	assert.Equal(t, "a.txt", fields[0].Desc.Filename)
	assert.Equal(t, "aaa", string(fields[0].Data))
	assert.Equal(t, "attachments", fields[1].Name)
	assert.Equal(t, "b.txt", fields[1].Desc.Filename)
	assert.Equal(t, "bbb", string(fields[1].Data))
}

func TestParseMultipart_MissingBoundaryNotFoundIsFatal(t *testing.T) {
	body := []byte("no boundary here at all")
	err := parseMultipart(body, 0, "XYZ", "", DefaultConfig(), func(FormField) {}, 0)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestParseMultipart_ZeroLengthSegmentSkipped(t *testing.T) {
	body := []byte("--XYZ\r\n\r\n--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nHi\r\n--XYZ--")
	var fields []FormField
	err := parseMultipart(body, 0, "XYZ", "", DefaultConfig(), func(f FormField) {
		fields = append(fields, f)
	}, 0)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "f", fields[0].Name)
}

func TestParseMultipart_RecursionDepthBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMixedDepth = 1
	body := []byte("--XYZ\r\nContent-Disposition: form-data; name=\"a\"\r\nContent-Type: multipart/mixed; boundary=INNER\r\n\r\n" +
		"--INNER\r\nContent-Disposition: form-data; name=\"b\"\r\nContent-Type: multipart/mixed; boundary=DEEPER\r\n\r\n" +
		"--DEEPER\r\nContent-Disposition: attachment; filename=\"c.txt\"\r\n\r\ndata\r\n--DEEPER--" +
		"\r\n--INNER--" +
		"\r\n--XYZ--")
	err := parseMultipart(body, 0, "XYZ", "", cfg, func(FormField) {}, 0)
	assert.Error(t, err)
}
