package kcgx

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// requestMeta collects everything the worker needs to emit a single
// request's output stream, regardless of whether it arrived over CGI or
// FastCGI.
type requestMeta struct {
	Env           *Env
	Method        string
	Scheme        string
	RemoteAddr    string
	ScriptName    string
	Host          string
	Port          string
	PathInfo      string
	Authorization string
	QueryString   string
	Cookie        string
	Body          []byte
	ContentType   string
}

// readCGIBody reads exactly n bytes from r, tolerating partial reads (a
// short read is logged but not fatal); the returned slice is always one
// byte longer than its data, NUL-terminated past the real length.
func readCGIBody(r io.Reader, n int64) []byte {
	if n <= 0 {
		return []byte{0}
	}
	buf := make([]byte, n+1)
	var got int64
	for got < n {
		nr, err := r.Read(buf[got:n])
		got += int64(nr)
		if err != nil {
			if err != io.EOF {
				Log.Warnw("error reading CGI body", "error", err, "got", got, "want", n)
			}
			break
		}
	}
	if got < n {
		Log.Warnw("short CGI body read", "got", got, "want", n)
	}
	return buf[:got+1] // buf[got] is already zero: NUL terminator
}

// buildRequestMeta extracts the scalar request metadata from env; the
// body is supplied separately by the caller since CGI and FastCGI source
// it differently.
func buildRequestMeta(env *Env, body []byte) *requestMeta {
	m := &requestMeta{Env: env, Body: body}
	m.Method, _ = env.Get("REQUEST_METHOD")
	if m.Method == "" {
		m.Method = "GET"
	}
	if https, _ := env.Get("HTTPS"); https != "" {
		m.Scheme = "https"
	} else {
		m.Scheme = "http"
	}
	m.RemoteAddr, _ = env.Get("REMOTE_ADDR")
	m.ScriptName, _ = env.Get("SCRIPT_NAME")
	m.Host, _ = env.Get("SERVER_NAME")
	m.Port, _ = env.Get("SERVER_PORT")
	m.PathInfo, _ = env.Get("PATH_INFO")
	m.Authorization, _ = env.Get("HTTP_AUTHORIZATION")
	m.QueryString, _ = env.Get("QUERY_STRING")
	m.Cookie, _ = env.Get("HTTP_COOKIE")
	m.ContentType, _ = env.Get("CONTENT_TYPE")
	return m
}

// emitScalar writes one metadata record of the given class with value as
// its Value field; everything else on the Pair is left zero.
func emitScalar(enc *Encoder, class InputClass, value []byte) error {
	return enc.Encode(&Pair{Class: class, Value: value})
}

// emitRequest writes the full output stream for one request in a fixed
// field order, finishing with the sentinel record.
func emitRequest(enc *Encoder, m *requestMeta, keyTable KeyTable, cfg *Config) error {
	for _, h := range httpHeaders(m.Env) {
		if err := enc.Encode(&Pair{Class: ClassEnvHeader, Key: []byte(h.Name), Value: []byte(h.Value)}); err != nil {
			return err
		}
	}
	if err := emitScalar(enc, ClassMethod, []byte(m.Method)); err != nil {
		return err
	}

	authKind := ""
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(m.Authorization)), "digest") {
		authKind = "digest"
	}
	if err := emitScalar(enc, ClassAuthKind, []byte(authKind)); err != nil {
		return err
	}

	var digestVal []byte
	if sum, ok := digestHA2(m.Authorization, m.Method, m.ScriptName, m.PathInfo, m.Body); ok {
		digestVal = sum[:]
	}
	if err := emitScalar(enc, ClassAuthDigest, digestVal); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassScheme, []byte(m.Scheme)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassRemoteAddr, []byte(m.RemoteAddr)); err != nil {
		return err
	}

	pc := SplitPathInfo(m.PathInfo)
	if err := emitScalar(enc, ClassPathInfo, []byte(pc.PathInfo)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassPathSuffix, []byte(pc.Suffix)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassPathBase, []byte(pc.Base)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassPathSub, []byte(pc.Sub)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassScriptName, []byte(m.ScriptName)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassHost, []byte(m.Host)); err != nil {
		return err
	}
	if err := emitScalar(enc, ClassPort, []byte(m.Port)); err != nil {
		return err
	}

	// Body pairs, then the body MD5 record (empty value when there is no
	// body).
	var bodyErr error
	demuxBody(m.Body, m.ContentType, m.Method, cfg, func(p *Pair) {
		if bodyErr != nil {
			return
		}
		keyTable.dispatch(p)
		bodyErr = enc.Encode(p)
	})
	if bodyErr != nil {
		return bodyErr
	}
	var md5Val []byte
	if len(m.Body) > 0 {
		sum := bodyMD5(m.Body)
		md5Val = sum[:]
	}
	if err := emitScalar(enc, ClassBodyMD5, md5Val); err != nil {
		return err
	}

	// Query pairs.
	var queryErr error
	parseURLEncoded(ClassQuery, []byte(m.QueryString), func(k, v []byte) {
		if queryErr != nil {
			return
		}
		p := &Pair{Class: ClassQuery, Key: k, Value: v, ContentTypeIndex: cfg.mimeIndex("")}
		keyTable.dispatch(p)
		queryErr = enc.Encode(p)
	})
	if queryErr != nil {
		return queryErr
	}

	// Cookie pairs.
	var cookieErr error
	parseCookies([]byte(m.Cookie), func(k, v []byte) {
		if cookieErr != nil {
			return
		}
		p := &Pair{Class: ClassCookie, Key: k, Value: v, ContentTypeIndex: cfg.mimeIndex("")}
		keyTable.dispatch(p)
		cookieErr = enc.Encode(p)
	})
	if cookieErr != nil {
		return cookieErr
	}

	return enc.EncodeEnd()
}

// ServeCGI runs one CGI request: ingests the environment and (if any)
// request body, and writes the full parsed output stream to enc.
func ServeCGI(envp EnvironProvider, stdin io.Reader, enc *Encoder, keyTable KeyTable, cfg *Config) error {
	reqID := uuid.New().String()
	env := ingestCGIEnviron(envp.Environ())
	clRaw, _ := env.Get("CONTENT_LENGTH")
	cl := contentLength(clRaw)
	if cl > cfg.MaxBodySize {
		cl = cfg.MaxBodySize
	}
	var body []byte
	if cl > 0 {
		full := readCGIBody(stdin, cl)
		body = full[:len(full)-1]
	}
	Log.Debugw("serving CGI request", "request_id", reqID, "body_len", len(body))
	logBody(os.Stderr, cfg.Debug, body)
	m := buildRequestMeta(env, body)
	if err := emitRequest(enc, m, keyTable, cfg); err != nil {
		Log.Warnw("CGI request failed", "request_id", reqID, "error", err)
		return err
	}
	return nil
}

// ServeFastCGISession runs one FastCGI session to completion: reads the
// session, acknowledges it, and writes the full parsed output stream to
// enc.
func ServeFastCGISession(conn io.ReadWriter, enc *Encoder, keyTable KeyTable, cfg *Config) error {
	reqID := uuid.New().String()
	sess, err := readFCGISession(conn)
	if err != nil {
		return err
	}
	if err := writeFCGIAck(conn, sess.Cookie, sess.RequestID); err != nil {
		return wrap(err, ErrFatal, "writing FastCGI session acknowledgement")
	}

	body := sess.Stdin
	if int64(len(body)) > cfg.MaxBodySize {
		body = body[:cfg.MaxBodySize]
	}
	Log.Debugw("serving FastCGI session", "request_id", reqID, "fcgi_request_id", sess.RequestID, "body_len", len(body))
	logBody(os.Stderr, cfg.Debug, body)
	m := buildRequestMeta(sess.Env, body)
	if err := emitRequest(enc, m, keyTable, cfg); err != nil {
		Log.Warnw("FastCGI session failed", "request_id", reqID, "error", err)
		return err
	}
	return nil
}

// ServeFastCGI runs the FastCGI worker loop: each session is read,
// acknowledged, and emitted in turn, until a session fails to parse,
// which terminates the worker loop. The controlling process closing the
// control socket cleanly between sessions (io.EOF on the cookie that
// opens the next session) ends the loop without error; any other
// failure is returned to the caller.
func ServeFastCGI(conn io.ReadWriter, enc *Encoder, keyTable KeyTable, cfg *Config) error {
	for {
		if err := ServeFastCGISession(conn, enc, keyTable, cfg); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
