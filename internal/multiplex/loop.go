// Package multiplex implements the single-threaded, cooperative read loop
// that services exactly two file descriptors — the host's stdin and a PTY
// master — with one select(2) call per iteration and no goroutine-per-reader
// fan-out, so input ordering between the two sources is never reordered by
// scheduling.
package multiplex

import (
	"golang.org/x/sys/unix"
)

// BufferSize is the read chunk size for both descriptors, matching the
// reference implementation's read buffer.
const BufferSize = 1024

// Loop drives the select loop. Zero value is not usable; construct with
// the fields set directly.
type Loop struct {
	StdinFd int
	PTYFd   int

	// OnStdin receives bytes read from stdin; it should forward them to
	// the child, typically via the PTY session's Write.
	OnStdin func([]byte)
	// OnPTY receives bytes read from the PTY master; it should feed them
	// to the stream parser.
	OnPTY func([]byte)
	// Done is polled once per iteration; Run returns when it reports true.
	Done func() bool
}

// Run blocks, servicing both descriptors, until Done reports true or a
// read on the PTY master signals the child has exited (EOF, 0 bytes).
//
// Unlike the reference implementation's indefinite select(2), this loop
// uses a short poll timeout so Done is re-checked even when neither
// descriptor is ready — there is no signal-driven wakeup path from a
// resize or shutdown request otherwise.
func (l *Loop) Run() error {
	buf := make([]byte, BufferSize)
	tv := unix.Timeval{Sec: 0, Usec: 200000}

	for {
		if l.Done != nil && l.Done() {
			return nil
		}

		var rfds unix.FdSet
		fdSet(&rfds, l.StdinFd)
		fdSet(&rfds, l.PTYFd)
		nfd := l.StdinFd
		if l.PTYFd > nfd {
			nfd = l.PTYFd
		}

		timeout := tv
		n, err := unix.Select(nfd+1, &rfds, nil, nil, &timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		if fdIsSet(&rfds, l.StdinFd) {
			nr, err := unix.Read(l.StdinFd, buf)
			if nr > 0 && l.OnStdin != nil {
				l.OnStdin(buf[:nr])
			}
			if err != nil && err != unix.EAGAIN {
				return err
			}
		}

		if fdIsSet(&rfds, l.PTYFd) {
			nr, err := unix.Read(l.PTYFd, buf)
			if nr > 0 && l.OnPTY != nil {
				l.OnPTY(buf[:nr])
			}
			if nr == 0 || err != nil {
				if err == nil || err != unix.EAGAIN {
					return nil
				}
			}
		}
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
