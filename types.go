package kcgx

// InputClass identifies which bucket a parsed pair belongs to, mirroring
// the "enum input" from the C parser this package is modeled on.
type InputClass uint8

const (
	ClassCookie InputClass = iota
	ClassQuery
	ClassForm

	// The classes below carry the scalar request metadata in the
	// worker's fixed emission order: environment headers, method, auth
	// kind, raw-authorization digest flag, scheme, remote address, path
	// components, script-name, host, port. Rather than invent a second
	// wire format for this metadata, it rides the same Pair record shape
	// as the cookie/query/form classes, just with more InputClass
	// variants.
	ClassEnvHeader   // Key = de-titled header name, Value = header value
	ClassMethod      // Value = request method
	ClassAuthKind    // Value = "digest" or ""
	ClassAuthDigest  // Value = 16-byte HA2, or empty if not Digest auth
	ClassScheme      // Value = "http" or "https"
	ClassRemoteAddr  // Value = REMOTE_ADDR
	ClassPathInfo    // Value = raw PATH_INFO
	ClassPathSuffix  // Value = PathComponents.Suffix
	ClassPathBase    // Value = PathComponents.Base
	ClassPathSub     // Value = PathComponents.Sub
	ClassScriptName  // Value = SCRIPT_NAME
	ClassHost        // Value = SERVER_NAME
	ClassPort        // Value = SERVER_PORT
	ClassBodyMD5     // Value = 16-byte MD5 of the raw body, or empty

	// ClassEndSentinel never appears on the wire as a real field; it marks
	// the terminating record of the IPC stream.
	ClassEndSentinel
)

func (c InputClass) String() string {
	switch c {
	case ClassCookie:
		return "cookie"
	case ClassQuery:
		return "query"
	case ClassForm:
		return "form"
	case ClassEnvHeader:
		return "env-header"
	case ClassMethod:
		return "method"
	case ClassAuthKind:
		return "auth-kind"
	case ClassAuthDigest:
		return "auth-digest"
	case ClassScheme:
		return "scheme"
	case ClassRemoteAddr:
		return "remote-addr"
	case ClassPathInfo:
		return "path-info"
	case ClassPathSuffix:
		return "path-suffix"
	case ClassPathBase:
		return "path-base"
	case ClassPathSub:
		return "path-sub"
	case ClassScriptName:
		return "script-name"
	case ClassHost:
		return "host"
	case ClassPort:
		return "port"
	case ClassBodyMD5:
		return "body-md5"
	case ClassEndSentinel:
		return "end"
	default:
		return "unknown"
	}
}

// ValidState is the validator-dispatch outcome for a pair.
type ValidState uint8

const (
	StateUnchecked ValidState = iota
	StateValid
	StateInvalid
)

// ValueType tags which typed result, if any, a VALID pair carries.
type ValueType uint8

const (
	TypeUnset ValueType = iota
	TypeString
	TypeInteger
	TypeDouble
)

// Pair is the parsed-pair wire record, in worker→parent emission order.
type Pair struct {
	Class InputClass
	Key   []byte
	Value []byte

	State ValidState
	Type  ValueType

	// KeyBucketIndex indexes into the caller-supplied key table, or the
	// table size when the key is not recognized.
	KeyBucketIndex int

	// Exactly one of these is meaningful when State == StateValid and
	// Type matches; StrOff is an offset into Value (valueStart -
	// parseStart), never a pointer — see DESIGN.md for the sign
	// convention this package settled on.
	IntVal    int64
	DoubleVal float64
	StrOff    int

	Filename         []byte
	ContentType      []byte
	ContentTypeIndex int
	TransferEncoding []byte
}

// EnvEntry is a canonicalized CGI/FastCGI environment entry. Order is
// preserved as presented; on duplicate keys the last value wins.
type EnvEntry struct {
	Key   []byte
	Value []byte
}

// MIMEDescriptor is the collected headers of one multipart part.
type MIMEDescriptor struct {
	Disposition      string
	Name             string
	Filename         string
	ContentType      string
	TransferEncoding string
	Boundary         string
	ContentTypeIndex int
}
