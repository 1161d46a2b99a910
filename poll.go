package main

import (
	"errors"
	"log/slog"

	"golang.org/x/sys/unix"
)

// fdPoller finds mux lines backed by file descriptors that have input
// waiting. It never blocks.
type fdPoller struct {
	log   *slog.Logger
	fds   []unix.PollFd
	units []int
}

type fder interface {
	Fd() uintptr
}

func (p *fdPoller) Poll(m *Mux) {
	p.fds, p.units = p.fds[:0], p.units[:0]
	for unit := 0; unit < numMuxUnits; unit++ {
		f, ok := m.pollable(unit).(fder)
		if !ok {
			continue
		}
		p.fds = append(p.fds, unix.PollFd{Fd: int32(f.Fd()), Events: unix.POLLIN})
		p.units = append(p.units, unit)
	}
	if len(p.fds) == 0 {
		return
	}

	n, err := unix.Poll(p.fds, 0)
	if err != nil {
		if !errors.Is(err, unix.EINTR) {
			p.log.Error("mux: poll failed", "err", err)
		}
		return
	}
	if n == 0 {
		return
	}
	for i, fd := range p.fds {
		// A hangup is reported as readable so the read sees end of input.
		if fd.Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			m.ScheduleRxReady(p.units[i])
		}
	}
}
