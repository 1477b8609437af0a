package kcgx

import (
	"bytes"
	"fmt"
	"strings"
)

// FormField is one parsed multipart/form-data field, emitted by
// parseMultipart for the body demultiplexer to turn into a Pair.
type FormField struct {
	Name string
	Desc *MIMEDescriptor
	Data []byte
}

// parseMultipart implements the RFC 2046 §5.1.1 multipart-body grammar,
// recursing into nested multipart/mixed parts up to cfg.MaxMixedDepth to
// bound recursion against adversarial nested bodies.
func parseMultipart(buf []byte, pos int, boundary string, inheritedName string, cfg *Config, emit func(FormField), depth int) error {
	if depth > cfg.MaxMixedDepth {
		return wrap(fmt.Errorf("depth %d", depth), ErrProtocol, "multipart/mixed recursion too deep")
	}

	bb := []byte("\r\n--" + boundary)
	first := true

	for pos < len(buf) {
		needle := bb
		if first {
			needle = bb[2:] // prologue: no leading CRLF before the first boundary
		}
		rel := bytes.Index(buf[pos:], needle)
		if rel < 0 {
			return wrap(fmt.Errorf("boundary %q not found", boundary), ErrProtocol, "multipart: boundary not found")
		}
		partStart := pos
		partEnd := pos + rel // start of the boundary delimiter itself
		afterBoundary := partEnd + len(needle)

		if afterBoundary+2 > len(buf) {
			return wrap(fmt.Errorf("truncated after boundary"), ErrProtocol, "multipart: boundary out of bounds")
		}

		terminator := bytes.Equal(buf[afterBoundary:afterBoundary+2], []byte("--"))
		var nextPos int
		if terminator {
			nextPos = len(buf) // epilogue, if any, is discarded
		} else {
			p := afterBoundary
			for p < len(buf) && (buf[p] == ' ' || buf[p] == '\t') {
				p++
			}
			if p+2 > len(buf) || !bytes.Equal(buf[p:p+2], []byte("\r\n")) {
				return wrap(fmt.Errorf("missing CRLF after boundary"), ErrProtocol, "multipart: missing boundary CRLF")
			}
			nextPos = p + 2
		}

		if first {
			first = false
			pos = nextPos
			continue
		}

		partsz := partEnd - partStart
		if partsz == 0 {
			Log.Warnw("skipping zero-length multipart segment")
			pos = nextPos
			continue
		}

		hdrPos := partStart
		desc, err := parseMIMEHeaders(buf[:partEnd], &hdrPos, cfg)
		if err != nil {
			return err
		}
		if desc.Disposition == "" {
			Log.Warnw("skipping multipart segment with no Content-Disposition")
			pos = nextPos
			continue
		}
		name := desc.Name
		if name == "" {
			name = inheritedName
		}
		if name == "" {
			Log.Warnw("skipping multipart segment with no name")
			pos = nextPos
			continue
		}
		if desc.ContentType == "" {
			desc.ContentType = "text/plain"
			desc.ContentTypeIndex = cfg.mimeIndex(desc.ContentType)
		}

		if strings.EqualFold(desc.ContentType, "multipart/mixed") {
			if desc.Boundary == "" {
				return wrap(fmt.Errorf("no boundary param"), ErrProtocol, "multipart: missing nested boundary")
			}
			if err := parseMultipart(buf[:partEnd], hdrPos, desc.Boundary, name, cfg, emit, depth+1); err != nil {
				return err
			}
		} else {
			emit(FormField{
				Name: name,
				Desc: desc,
				Data: buf[hdrPos:partEnd],
			})
		}

		pos = nextPos
	}
	return nil
}
