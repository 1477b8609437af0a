package kcgx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FastCGI record types.
const (
	fcgiBeginRequest    = 1
	fcgiAbortRequest    = 2
	fcgiEndRequest      = 3
	fcgiParams          = 4
	fcgiStdin           = 5
	fcgiGetValues       = 9
	fcgiGetValuesResult = 10
	fcgiUnknownType     = 11

	fcgiVersion1 = 1

	fcgiHeaderLen = 8
	fcgiKeepConn  = 1
)

// fcgiHeader is the 8-byte FastCGI/1.0 record header, big-endian.
type fcgiHeader struct {
	Version       uint8
	Type          uint8
	RequestID     uint16
	ContentLength uint16
	PaddingLength uint8
	Reserved      uint8
}

func readFCGIHeader(r io.Reader) (fcgiHeader, error) {
	var b [fcgiHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return fcgiHeader{}, wrap(err, ErrProtocol, "reading FastCGI record header")
	}
	return fcgiHeader{
		Version:       b[0],
		Type:          b[1],
		RequestID:     binary.BigEndian.Uint16(b[2:4]),
		ContentLength: binary.BigEndian.Uint16(b[4:6]),
		PaddingLength: b[6],
		Reserved:      b[7],
	}, nil
}

func writeFCGIHeader(w io.Writer, h fcgiHeader) error {
	b := [fcgiHeaderLen]byte{h.Version, h.Type, 0, 0, 0, 0, h.PaddingLength, h.Reserved}
	binary.BigEndian.PutUint16(b[2:4], h.RequestID)
	binary.BigEndian.PutUint16(b[4:6], h.ContentLength)
	_, err := w.Write(b[:])
	return err
}

func readFCGIBody(r io.Reader, h fcgiHeader) ([]byte, error) {
	body := make([]byte, h.ContentLength)
	if h.ContentLength > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, wrap(err, ErrProtocol, "reading FastCGI record body")
		}
	}
	if h.PaddingLength > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(h.PaddingLength)); err != nil {
			return nil, wrap(err, ErrProtocol, "discarding FastCGI record padding")
		}
	}
	return body, nil
}

// session is one FastCGI BEGIN_REQUEST...STDIN(end) cycle: request ID,
// parsed environment, and accumulated stdin body.
type session struct {
	Cookie    uint32
	RequestID uint16
	Env       *Env
	// Stdin holds the accumulated body bytes only, with no terminator;
	// NulTerminated returns a NUL-terminated copy. StdinLen is len(Stdin).
	Stdin    []byte
	StdinLen int
}

// readFCGICookie reads the 32-bit cookie the controlling server-process
// wrapper injects on the control socket before each BEGIN_REQUEST.
func readFCGICookie(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			return 0, err
		}
		return 0, wrap(err, ErrProtocol, "reading FastCGI session cookie")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// writeFCGIAck writes the cookie and request ID back to the control
// socket once STDIN completes.
func writeFCGIAck(w io.Writer, cookie uint32, requestID uint16) error {
	var b [6]byte
	binary.BigEndian.PutUint32(b[0:4], cookie)
	binary.BigEndian.PutUint16(b[4:6], requestID)
	_, err := w.Write(b[:])
	return err
}

// readFCGISession runs one full session lifecycle: cookie, BEGIN_REQUEST,
// PARAMS stream, STDIN stream. Any parse error terminates the session
// and the whole worker loop — callers should treat a non-nil error as
// fatal.
func readFCGISession(r io.Reader) (*session, error) {
	cookie, err := readFCGICookie(r)
	if err != nil {
		return nil, err
	}

	h, err := readFCGIHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Version != fcgiVersion1 {
		return nil, wrap(fmt.Errorf("version %d", h.Version), ErrProtocol, "unsupported FastCGI version")
	}
	if h.Type != fcgiBeginRequest {
		return nil, wrap(fmt.Errorf("type %d", h.Type), ErrProtocol, "expected BEGIN_REQUEST")
	}
	body, err := readFCGIBody(r, h)
	if err != nil {
		return nil, err
	}
	if len(body) < 8 {
		return nil, wrap(fmt.Errorf("short BEGIN_REQUEST body"), ErrProtocol, "malformed BEGIN_REQUEST")
	}
	flags := body[2]
	if flags&fcgiKeepConn != 0 {
		return nil, wrap(fmt.Errorf("KEEP_CONN requested"), ErrProtocol, "KEEP_CONN is not supported")
	}

	sess := &session{Cookie: cookie, RequestID: h.RequestID, Env: newEnv()}

	// PARAMS phase: consume PARAMS records for this request ID until an
	// empty one terminates the phase, or the first non-PARAMS header
	// (which must be STDIN) ends it early.
	bodyDone := false
paramsLoop:
	for {
		ph, err := readFCGIHeader(r)
		if err != nil {
			return nil, err
		}
		if ph.RequestID != sess.RequestID {
			return nil, wrap(fmt.Errorf("request id %d != %d", ph.RequestID, sess.RequestID), ErrProtocol, "mismatched request id in PARAMS phase")
		}
		switch ph.Type {
		case fcgiParams:
			pbody, err := readFCGIBody(r, ph)
			if err != nil {
				return nil, err
			}
			if len(pbody) == 0 {
				break paramsLoop
			}
			if err := ingestFastCGIParams(sess.Env, pbody); err != nil {
				return nil, err
			}
		case fcgiStdin:
			body, err := readFCGIBody(r, ph)
			if err != nil {
				return nil, err
			}
			if len(body) == 0 {
				bodyDone = true
			} else {
				sess.appendStdin(body)
			}
			break paramsLoop
		default:
			return nil, wrap(fmt.Errorf("type %d", ph.Type), ErrProtocol, "expected STDIN after PARAMS")
		}
	}

	// STDIN phase: read any further records until an empty one
	// terminates the body.
	for !bodyDone {
		sh, err := readFCGIHeader(r)
		if err != nil {
			return nil, err
		}
		if sh.RequestID != sess.RequestID {
			return nil, wrap(fmt.Errorf("request id %d != %d", sh.RequestID, sess.RequestID), ErrProtocol, "mismatched request id in STDIN phase")
		}
		if sh.Type != fcgiStdin {
			return nil, wrap(fmt.Errorf("type %d", sh.Type), ErrProtocol, "expected STDIN")
		}
		body, err := readFCGIBody(r, sh)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			bodyDone = true
			break
		}
		sess.appendStdin(body)
	}

	return sess, nil
}

func (s *session) appendStdin(b []byte) {
	s.Stdin = append(s.Stdin, b...)
	s.StdinLen = len(s.Stdin)
}

// NulTerminated returns the accumulated STDIN body with a NUL appended
// past the real length, for consumers expecting C-style termination; len
// and StdinLen remain authoritative.
func (s *session) NulTerminated() []byte {
	return append(append([]byte(nil), s.Stdin...), 0)
}
