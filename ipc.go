package kcgx

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// byteOrder is the wire order for the framed IPC codec. The format is
// intentionally process-local (parent and worker share an ABI), so any
// fixed order works; little-endian matches the common deployment
// target.
var byteOrder = binary.LittleEndian

// FieldReader reads one fixed-size field, the way input.c's fullread()
// does: eofOK permits a clean EOF only when called on the first field of a
// record (the class byte); any other EOF is ErrUnexpectedEOF.
type FieldReader interface {
	ReadField(buf []byte, eofOK bool) (int, error)
}

// FieldWriter writes one field, retrying on short writes; a hard failure
// is fatal to the worker.
type FieldWriter interface {
	WriteField(buf []byte) error
}

// fdFieldReader/fdFieldWriter implement FieldReader/FieldWriter over a raw
// file descriptor using the poll-based bounded I/O loop in ioloop.go —
// this is the production path for the worker's pipe to the parent.
type fdFieldReader struct{ fd int }

func (r fdFieldReader) ReadField(buf []byte, eofOK bool) (int, error) {
	return fullRead(r.fd, buf, eofOK)
}

type fdFieldWriter struct{ fd int }

func (w fdFieldWriter) WriteField(buf []byte) error {
	return fullWrite(w.fd, buf)
}

// bufFieldReader/bufFieldWriter adapt a plain io.Reader/io.Writer (e.g. an
// in-memory pipe in tests) to FieldReader/FieldWriter.
type bufFieldReader struct{ r *bufio.Reader }

func newBufFieldReader(r io.Reader) bufFieldReader {
	return bufFieldReader{r: bufio.NewReader(r)}
}

func (r bufFieldReader) ReadField(buf []byte, eofOK bool) (int, error) {
	n, err := io.ReadFull(r.r, buf)
	if err == io.EOF && eofOK && n == 0 {
		return 0, io.EOF
	}
	if err == io.ErrUnexpectedEOF || (err == io.EOF && (n > 0 || !eofOK)) {
		return n, wrap(io.ErrUnexpectedEOF, ErrUnexpectedEOF, "short read")
	}
	if err != nil {
		return n, wrap(err, ErrRead, "read field")
	}
	return n, nil
}

type bufFieldWriter struct{ w io.Writer }

func (w bufFieldWriter) WriteField(buf []byte) error {
	_, err := w.w.Write(buf)
	if err != nil {
		return wrap(err, ErrFatal, "write field")
	}
	return nil
}

// Encoder serializes Pair records onto a FieldWriter, terminated by a
// sentinel record.
type Encoder struct {
	w FieldWriter
}

// NewEncoder builds an Encoder writing to an arbitrary io.Writer (tests,
// or any in-process pipe).
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufFieldWriter{w: w}}
}

// NewFileEncoder builds an Encoder writing to a raw descriptor via the
// poll-based bounded writer, the production path worker→parent.
func NewFileEncoder(fd int) *Encoder {
	return &Encoder{w: fdFieldWriter{fd: fd}}
}

func (e *Encoder) writeUint8(v uint8) error  { return e.w.WriteField([]byte{v}) }
func (e *Encoder) writeInt(v int) error {
	var b [8]byte
	byteOrder.PutUint64(b[:], uint64(v))
	return e.w.WriteField(b[:])
}
func (e *Encoder) writeInt64(v int64) error { return e.writeInt(int(v)) }
func (e *Encoder) writeFloat64(v float64) error {
	var b [8]byte
	byteOrder.PutUint64(b[:], math.Float64bits(v))
	return e.w.WriteField(b[:])
}
func (e *Encoder) writeBytes(b []byte) error {
	if err := e.writeInt(len(b)); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return e.w.WriteField(b)
}

// Encode writes one parsed pair to the stream.
func (e *Encoder) Encode(p *Pair) error {
	if err := e.writeUint8(uint8(p.Class)); err != nil {
		return err
	}
	if err := e.writeBytes(p.Key); err != nil {
		return err
	}
	if err := e.writeBytes(p.Value); err != nil {
		return err
	}
	if err := e.writeUint8(uint8(p.State)); err != nil {
		return err
	}
	if err := e.writeUint8(uint8(p.Type)); err != nil {
		return err
	}
	if err := e.writeInt(p.KeyBucketIndex); err != nil {
		return err
	}
	if p.State == StateValid {
		switch p.Type {
		case TypeInteger:
			if err := e.writeInt64(p.IntVal); err != nil {
				return err
			}
		case TypeDouble:
			if err := e.writeFloat64(p.DoubleVal); err != nil {
				return err
			}
		case TypeString:
			if err := e.writeInt(p.StrOff); err != nil {
				return err
			}
		}
	}
	if err := e.writeBytes(p.Filename); err != nil {
		return err
	}
	if err := e.writeBytes(p.ContentType); err != nil {
		return err
	}
	if err := e.writeInt(p.ContentTypeIndex); err != nil {
		return err
	}
	return e.writeBytes(p.TransferEncoding)
}

// EncodeEnd writes the terminating sentinel record.
func (e *Encoder) EncodeEnd() error {
	return e.writeUint8(uint8(ClassEndSentinel))
}

// Decoder deserializes Pair records from a FieldReader until the
// sentinel record. Fields within a record are read in the one order
// Encode writes them; records of any class are accepted in any order,
// since the encoder is the one that guarantees the fixed emission order.
type Decoder struct {
	r FieldReader
}

// NewDecoder builds a Decoder reading from an arbitrary io.Reader.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: newBufFieldReader(r)}
}

// NewFileDecoder builds a Decoder reading from a raw descriptor via the
// poll-based bounded reader, the production path parent-side.
func NewFileDecoder(fd int) *Decoder {
	return &Decoder{r: fdFieldReader{fd: fd}}
}

func (d *Decoder) readUint8(eofOK bool) (uint8, error) {
	var b [1]byte
	_, err := d.r.ReadField(b[:], eofOK)
	return b[0], err
}
func (d *Decoder) readInt() (int, error) {
	var b [8]byte
	if _, err := d.r.ReadField(b[:], false); err != nil {
		return 0, err
	}
	return int(byteOrder.Uint64(b[:])), nil
}
func (d *Decoder) readInt64() (int64, error) {
	n, err := d.readInt()
	return int64(n), err
}
func (d *Decoder) readFloat64() (float64, error) {
	var b [8]byte
	if _, err := d.r.ReadField(b[:], false); err != nil {
		return 0, err
	}
	return math.Float64frombits(byteOrder.Uint64(b[:])), nil
}
func (d *Decoder) readBytes() ([]byte, error) {
	n, err := d.readInt()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := d.r.ReadField(buf, false); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode reads the next record. It returns (nil, nil) once the sentinel
// record is read, or (nil, io.EOF) if the stream ends cleanly before any
// bytes of a new record are read (a protocol error for anything but the
// class field is surfaced as ErrUnexpectedEOF instead).
func (d *Decoder) Decode() (*Pair, error) {
	class, err := d.readUint8(true)
	if err != nil {
		return nil, err
	}
	if InputClass(class) == ClassEndSentinel {
		return nil, nil
	}

	p := &Pair{Class: InputClass(class)}
	if p.Key, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.Value, err = d.readBytes(); err != nil {
		return nil, err
	}
	state, err := d.readUint8(false)
	if err != nil {
		return nil, err
	}
	p.State = ValidState(state)
	typ, err := d.readUint8(false)
	if err != nil {
		return nil, err
	}
	p.Type = ValueType(typ)
	if p.KeyBucketIndex, err = d.readInt(); err != nil {
		return nil, err
	}
	if p.State == StateValid {
		switch p.Type {
		case TypeInteger:
			if p.IntVal, err = d.readInt64(); err != nil {
				return nil, err
			}
		case TypeDouble:
			if p.DoubleVal, err = d.readFloat64(); err != nil {
				return nil, err
			}
		case TypeString:
			if p.StrOff, err = d.readInt(); err != nil {
				return nil, err
			}
		}
	}
	if p.Filename, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.ContentType, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.ContentTypeIndex, err = d.readInt(); err != nil {
		return nil, err
	}
	if p.TransferEncoding, err = d.readBytes(); err != nil {
		return nil, err
	}
	return p, nil
}
