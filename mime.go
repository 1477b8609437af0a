package kcgx

import (
	"bytes"
	"fmt"
	"strings"
)

// parseMIMEHeaders consumes an RFC 2045 header block starting at buf[pos],
// advancing pos past the terminating empty line, and returns the
// populated descriptor. Grounded on input.c's mime_parse:
// unrecognized headers are ignored, parameter values may be bare or
// "quoted" (no RFC 2047 escaping), and a line with no ':' is a fatal
// parse error for the current body.
func parseMIMEHeaders(buf []byte, pos *int, cfg *Config) (*MIMEDescriptor, error) {
	desc := &MIMEDescriptor{}
	for *pos < len(buf) {
		start := *pos
		end := bytes.Index(buf[start:], []byte("\r\n"))
		if end < 0 {
			return nil, wrap(fmt.Errorf("no CRLF before end of buffer"), ErrProtocol, "MIME header without CRLF")
		}
		line := buf[start : start+end]
		*pos = start + end + 2

		if len(line) == 0 {
			desc.ContentTypeIndex = cfg.mimeIndex(desc.ContentType)
			return desc, nil
		}

		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return nil, wrap(fmt.Errorf("%q", line), ErrProtocol, "MIME header without key-value colon")
		}
		key := strings.TrimRight(string(line[:colon]), " \t")
		val := string(line[colon+1:])
		val = strings.TrimLeft(val, " \t")

		main, params := splitMIMEParams(val)

		switch strings.ToLower(key) {
		case "content-transfer-encoding":
			desc.TransferEncoding = main
		case "content-disposition":
			desc.Disposition = main
		case "content-type":
			desc.ContentType = main
		default:
			continue
		}

		for k, v := range params {
			switch strings.ToLower(k) {
			case "filename":
				desc.Filename = v
			case "name":
				desc.Name = v
			case "boundary":
				desc.Boundary = v
			}
		}
	}
	return nil, wrap(fmt.Errorf("ran off end of buffer"), ErrProtocol, "MIME header unexpected EOF")
}

// splitMIMEParams splits "value; k=v; k2=\"v2\"" into the bare value and a
// map of its parameters, honoring bare or double-quoted parameter values
// (no escaping inside quotes, matching input.c's mime_parse).
func splitMIMEParams(s string) (main string, params map[string]string) {
	params = map[string]string{}
	rest := s
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		main, rest = rest[:i], rest[i+1:]
	} else {
		return rest, params
	}

	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}
		key := rest[:eq]
		rest = rest[eq+1:]
		var val string
		if len(rest) > 0 && rest[0] == '"' {
			rest = rest[1:]
			q := strings.IndexByte(rest, '"')
			if q < 0 {
				break
			}
			val = rest[:q]
			rest = rest[q+1:]
			if len(rest) > 0 && rest[0] == ';' {
				rest = rest[1:]
			}
		} else if i := strings.IndexByte(rest, ';'); i >= 0 {
			val = rest[:i]
			rest = rest[i+1:]
		} else {
			val = rest
			rest = ""
		}
		params[key] = val
	}
	return main, params
}
