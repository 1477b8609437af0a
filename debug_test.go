package kcgx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBody_DisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	logBody(&buf, 0, []byte("hello"))
	assert.Empty(t, buf.Bytes())
}

func TestLogBody_EscapesByGlyphClass(t *testing.T) {
	var buf bytes.Buffer
	logBody(&buf, DebugLogBody, []byte("A\n\t\x01B"))
	out := buf.String()
	assert.Contains(t, out, `A\n\t?B`)
}
