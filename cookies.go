package kcgx

import "bytes"

// parseCookies splits the HTTP_COOKIE environment value into individual
// pairs. Grounded on child.c's kworker_child_cookies(), which calls
// parse_pairs() — a distinct function from parse_pairs_urlenc() (used for
// query strings and x-www-form-urlencoded bodies). parse_pairs() splits
// only on ';' (never '&') and never calls urldecode(): both sides of '='
// are passed through literally. A token with no '=' has no value and is
// skipped with a warning; an empty key is skipped.
func parseCookies(raw []byte, emit func(key, val []byte)) {
	for _, tok := range bytes.Split(raw, []byte(";")) {
		for len(tok) > 0 && tok[0] == ' ' {
			tok = tok[1:]
		}
		if len(tok) == 0 {
			continue
		}
		eq := bytes.IndexByte(tok, '=')
		if eq < 0 {
			Log.Warnw("skipping cookie token with no value")
			continue
		}
		key, val := tok[:eq], tok[eq+1:]
		if len(key) == 0 {
			continue
		}
		emit(append([]byte(nil), key...), append([]byte(nil), val...))
	}
}
