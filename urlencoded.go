package kcgx

import "bytes"

// urldecode decodes a '%XX'/'+' encoded byte slice in place, returning the
// decoded length. It never grows the buffer: decoded length is always
// ≤ input length. ok is false if a '%' is followed by fewer than two hex
// digits, a non-hex digit, or decodes to NUL — the caller must then skip
// the whole pair.
func urldecode(b []byte) (decoded []byte, ok bool) {
	out := b[:0]
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '+':
			out = append(out, ' ')
		case '%':
			if i+2 >= len(b) {
				return nil, false
			}
			hi, okHi := hexVal(b[i+1])
			lo, okLo := hexVal(b[i+2])
			if !okHi || !okLo {
				return nil, false
			}
			v := hi<<4 | lo
			if v == 0 {
				return nil, false
			}
			out = append(out, v)
			i += 2
		default:
			out = append(out, b[i])
		}
	}
	return out, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// parseURLEncoded parses "k=v&k2=v2..." bodies: query strings and
// application/x-www-form-urlencoded bodies. Tokens are separated by ';'
// or '&', with leading spaces on each token skipped, matching input.c's
// parse_pairs_urlenc. Both sides of '=' are URL-decoded. A malformed
// '%xx' escape skips that pair (logged), parsing continues. A token
// with no '=' has no value to decode and is skipped with a warning,
// matching input.c's parse_pairs_urlenc. An empty key is skipped.
//
// HTTP_COOKIE does NOT go through this parser: cookies use their own
// semicolon-only, non-decoding splitter in cookies.go.
func parseURLEncoded(class InputClass, body []byte, emit func(key, val []byte)) {
	for _, tok := range splitAny(body, ';', '&') {
		for len(tok) > 0 && tok[0] == ' ' {
			tok = tok[1:]
		}
		if len(tok) == 0 {
			continue
		}
		eq := bytes.IndexByte(tok, '=')
		if eq < 0 {
			Log.Warnw("skipping url-encoded token with no value", "class", class)
			continue
		}
		key, val := tok[:eq], tok[eq+1:]
		dkey, ok := urldecode(append([]byte(nil), key...))
		if !ok {
			Log.Warnw("skipping pair with malformed percent-escape in key", "class", class)
			continue
		}
		if len(dkey) == 0 {
			continue
		}
		dval, ok := urldecode(append([]byte(nil), val...))
		if !ok {
			Log.Warnw("skipping pair with malformed percent-escape in value", "class", class, "key", string(dkey))
			continue
		}
		emit(dkey, dval)
	}
}

// splitAny splits buf on any of the given single-byte separators, keeping
// empty tokens (callers decide whether to skip them).
func splitAny(buf []byte, seps ...byte) [][]byte {
	var out [][]byte
	start := 0
	isSep := func(c byte) bool {
		for _, s := range seps {
			if c == s {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(buf); i++ {
		if isSep(buf[i]) {
			out = append(out, buf[start:i])
			start = i + 1
		}
	}
	out = append(out, buf[start:])
	return out
}
