package kcgx

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// fullRead blocks on poll(2) until fd is readable, then reads exactly
// len(buf) bytes, retrying on EAGAIN and on short reads. eofOK allows a
// clean EOF when zero bytes have been read yet (used for the class field
// of a pair, which legitimately ends the stream); any other EOF is a
// protocol error.
//
// Grounded on input.c's fullread(): same retry-on-EAGAIN, same "short read
// past byte zero is fatal" rule, reimplemented with poll(2) via
// golang.org/x/sys/unix instead of libc.
func fullRead(fd int, buf []byte, eofOK bool) (int, error) {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n := 0
	for n < len(buf) {
		if _, err := unix.Poll(pfd, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return n, wrap(err, ErrRead, "poll POLLIN")
		}
		nr, err := unix.Read(fd, buf[n:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return n, wrap(err, ErrRead, "read")
		}
		if nr == 0 {
			if n == 0 && eofOK {
				return 0, io.EOF
			}
			return n, wrap(io.ErrUnexpectedEOF, ErrUnexpectedEOF, "short read")
		}
		n += nr
	}
	return n, nil
}

// fullWrite blocks on poll(2) until fd is writable, then writes exactly
// len(buf) bytes, retrying on EAGAIN and short writes. A hard failure
// here is always fatal to the worker: the caller is expected to
// propagate ErrFatal and exit.
func fullWrite(fd int, buf []byte) error {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	n := 0
	for n < len(buf) {
		if _, err := unix.Poll(pfd, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return wrap(err, ErrFatal, "poll POLLOUT")
		}
		nw, err := unix.Write(fd, buf[n:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return wrap(err, ErrFatal, "write")
		}
		n += nw
	}
	return nil
}
