//go:build linux

// Package serial implements a Linux dev-host gatt.Transport over a raw
// /dev/ttyUSB*-style character device, using unix.Termios directly
// instead of a cgo terminal library. It exists for bring-up on a
// Linux host talking to a BCM4345C0 module over a USB-UART bridge; the
// embedded target drives its own UART ISR and never imports this
// package.
package serial

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Port is a gatt.Transport backed by an open termios device file. The
// engine never calls Write concurrently with itself, but SetFlowControl
// can race a driver-side read loop, hence the mutex.
type Port struct {
	fd   int
	path string

	mu        sync.Mutex
	ctsAllows bool
}

// Open opens path (e.g. "/dev/ttyUSB0"), puts it into raw mode at baud,
// and returns a ready-to-use Port. The caller is responsible for
// forwarding every received byte to (*gatt.Stack).OnRxByte, typically
// from a goroutine reading Fd() in a loop.
func Open(path string, baud uint32) (*Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: get termios: %w", err)
	}
	rate, ok := baudConst(baud)
	if !ok {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: unsupported baud rate %d", baud)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | unix.CRTSCTS
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = rate
	t.Ospeed = rate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: set termios: %w", err)
	}

	return &Port{fd: fd, path: path, ctsAllows: true}, nil
}

// Write implements gatt.Transport.
func (p *Port) Write(b []byte) (int, error) {
	return unix.Write(p.fd, b)
}

// SetFlowControl implements gatt.Transport. Hardware RTS/CTS is already
// enabled on the line (CRTSCTS above); this only tracks state for
// callers that poll CTSAllowed before a large write.
func (p *Port) SetFlowControl(asserted bool) {
	p.mu.Lock()
	p.ctsAllows = asserted
	p.mu.Unlock()
}

// CTSAllowed reports the flow-control state last set by the engine.
func (p *Port) CTSAllowed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctsAllows
}

// Fd returns the underlying file descriptor, for a caller-owned read loop.
func (p *Port) Fd() int { return p.fd }

// Close closes the underlying file descriptor.
func (p *Port) Close() error {
	return unix.Close(p.fd)
}

func baudConst(baud uint32) (uint32, bool) {
	switch baud {
	case 9600:
		return unix.B9600, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	case 921600:
		return unix.B921600, true
	case 3000000:
		return unix.B3000000, true
	default:
		return 0, false
	}
}
