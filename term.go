package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

func tcget(fd uintptr) (*unix.Termios, error) {
	p, err := unix.IoctlGetTermios(int(fd), getTermios)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func tcset(fd uintptr, p *unix.Termios) error {
	return unix.IoctlSetTermios(int(fd), setTermios, p)
}

// console is the host terminal attached to line 0.
type console struct {
	fd       int
	oldState *term.State
}

// openConsole puts stdin in character mode without echo, and non blocking
// so the mux sees "no data" instead of waiting. Signals still work.
func openConsole() (*console, error) {
	c := &console{fd: int(os.Stdin.Fd())}
	if term.IsTerminal(c.fd) {
		st, err := term.GetState(c.fd)
		if err != nil {
			return nil, fmt.Errorf("console: %w", err)
		}
		t, err := tcget(uintptr(c.fd))
		if err != nil {
			return nil, fmt.Errorf("console: %w", err)
		}
		t.Lflag &^= unix.ICANON | unix.ECHO
		t.Cc[unix.VMIN] = 1
		t.Cc[unix.VTIME] = 0
		if err := tcset(uintptr(c.fd), t); err != nil {
			return nil, fmt.Errorf("console: %w", err)
		}
		c.oldState = st
	}
	if err := unix.SetNonblock(c.fd, true); err != nil {
		c.restore()
		return nil, fmt.Errorf("console: non blocking stdin: %w", err)
	}
	return c, nil
}

func (c *console) restore() {
	unix.SetNonblock(c.fd, false)
	if c.oldState != nil {
		term.Restore(c.fd, c.oldState)
		c.oldState = nil
	}
}
