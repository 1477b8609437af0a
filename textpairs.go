package kcgx

import "bytes"

// parseTextPairs parses CRLF-separated "key=value" bodies with no
// URL-decoding, used for text/plain POST bodies. A token without '=' is
// skipped with a warning; an empty key is skipped.
func parseTextPairs(class InputClass, body []byte, emit func(key, val []byte)) {
	for _, line := range bytes.Split(body, []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}
		eq := bytes.IndexByte(line, '=')
		if eq < 0 {
			Log.Warnw("skipping text pair with no value", "class", class)
			continue
		}
		key, val := line[:eq], line[eq+1:]
		if len(key) == 0 {
			continue
		}
		emit(append([]byte(nil), key...), append([]byte(nil), val...))
	}
}
