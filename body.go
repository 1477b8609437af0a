package kcgx

import (
	"strconv"
	"strings"
)

// demuxBody dispatches on Content-Type to the correct body parser and
// emits Pairs of class ClassForm through emit. method is the HTTP
// method (text/plain pairs only parse for POST).
func demuxBody(body []byte, contentType, method string, cfg *Config, emit func(*Pair)) {
	ctype, _, _ := strings.Cut(contentType, ";")
	ctype = strings.TrimSpace(ctype)

	switch {
	case strings.EqualFold(ctype, "application/x-www-form-urlencoded"):
		parseURLEncoded(ClassForm, body, func(k, v []byte) {
			emit(&Pair{Class: ClassForm, Key: k, Value: v, ContentTypeIndex: cfg.mimeIndex("")})
		})

	case strings.EqualFold(ctype, "multipart/form-data"):
		boundary := boundaryParam(contentType)
		if boundary == "" {
			Log.Warnw("multipart/form-data with no boundary parameter; skipping body")
			return
		}
		err := parseMultipart(body, 0, boundary, "", cfg, func(f FormField) {
			emit(&Pair{
				Class:            ClassForm,
				Key:              []byte(f.Name),
				Value:            f.Data,
				Filename:         []byte(f.Desc.Filename),
				ContentType:      []byte(f.Desc.ContentType),
				ContentTypeIndex: f.Desc.ContentTypeIndex,
				TransferEncoding: []byte(f.Desc.TransferEncoding),
			})
		}, 0)
		if err != nil {
			Log.Warnw("abandoning multipart body", "error", err)
		}

	case strings.EqualFold(ctype, "text/plain") && strings.EqualFold(method, "POST"):
		parseTextPairs(ClassForm, body, func(k, v []byte) {
			emit(&Pair{Class: ClassForm, Key: k, Value: v, ContentTypeIndex: cfg.mimeIndex("")})
		})

	default:
		reportCtype := ctype
		if reportCtype == "" {
			reportCtype = "application/octet-stream"
		}
		emit(&Pair{
			Class:            ClassForm,
			Key:              nil,
			Value:            body,
			ContentType:      []byte(reportCtype),
			ContentTypeIndex: cfg.mimeIndex(reportCtype),
		})
	}
}

// boundaryParam extracts the boundary="..." parameter from a
// multipart/form-data Content-Type header value.
func boundaryParam(contentType string) string {
	_, params := splitMIMEParams(contentType)
	return params["boundary"]
}

// contentLength parses CONTENT_LENGTH: absent or invalid yields 0; an
// oversized unsigned value clamps to the signed 64-bit max.
func contentLength(raw string) int64 {
	if raw == "" {
		return 0
	}
	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	if u > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(u)
}
