package kcgx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURLEncoded_BareTokenWithNoEqualsIsSkipped(t *testing.T) {
	type got struct{ key, val string }
	var pairs []got
	parseURLEncoded(ClassForm, []byte("a=1&b=&c"), func(k, v []byte) {
		pairs = append(pairs, got{string(k), string(v)})
	})
	assert.Equal(t, []got{{"a", "1"}, {"b", ""}}, pairs)
}

func TestURLDecode_HandlesUnicodeAndRejectsMalformedEscapes(t *testing.T) {
	decoded, ok := urldecode([]byte("Hello%20World%21"))
	assert.True(t, ok)
	assert.Equal(t, "Hello World!", string(decoded))

	decoded, ok = urldecode([]byte("%E9"))
	assert.True(t, ok)
	assert.Equal(t, []byte{0xE9}, decoded)

	_, ok = urldecode([]byte("%2"))
	assert.False(t, ok)

	_, ok = urldecode([]byte("%00"))
	assert.False(t, ok)
}

func TestParseURLEncoded_MalformedEscapeSkipsOnlyThatPair(t *testing.T) {
	type got struct{ key, val string }
	var pairs []got
	parseURLEncoded(ClassForm, []byte("a=%2&b=ok"), func(k, v []byte) {
		pairs = append(pairs, got{string(k), string(v)})
	})
	assert.Equal(t, []got{{"b", "ok"}}, pairs)
}

func TestParseURLEncoded_PlusDecodesToSpace(t *testing.T) {
	type got struct{ key, val string }
	var pairs []got
	parseURLEncoded(ClassQuery, []byte("q=a+b+c"), func(k, v []byte) {
		pairs = append(pairs, got{string(k), string(v)})
	})
	assert.Equal(t, []got{{"q", "a b c"}}, pairs)
}

func TestParseURLEncoded_SemicolonSeparator(t *testing.T) {
	type got struct{ key, val string }
	var pairs []got
	parseURLEncoded(ClassQuery, []byte("a=1;b=2"), func(k, v []byte) {
		pairs = append(pairs, got{string(k), string(v)})
	})
	assert.Equal(t, []got{{"a", "1"}, {"b", "2"}}, pairs)
}

func TestParseURLEncoded_EmptyKeySkipped(t *testing.T) {
	var pairs int
	parseURLEncoded(ClassQuery, []byte("=v&a=1"), func(k, v []byte) { pairs++ })
	assert.Equal(t, 1, pairs)
}
