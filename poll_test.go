package main

import (
	"os"
	"testing"

	"github.com/matryer/is"
)

func TestFdPoller(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	r, w, err := os.Pipe()
	is.NoErr(err)
	defer r.Close()
	defer w.Close()
	is.NoErr(tm.mux.Attach(1, ModeRaw, r, nil))

	p := &fdPoller{log: tm.log}
	p.Poll(tm.mux)
	is.True(!tm.mux.units[1].rxReadyAt.armed) // nothing written yet

	_, err = w.Write([]byte{0x55})
	is.NoErr(err)
	p.Poll(tm.mux)
	is.True(tm.mux.units[1].rxReadyAt.armed)

	// A character in flight is not polled again.
	p.Poll(tm.mux)

	tm.clock.now += charTime
	tm.mux.Tick(tm.clock.now)
	is.Equal(tm.read8(0xf203), uint8(0x55))
}

func TestFdPollerSkipsPlainReaders(t *testing.T) {
	tm := newTestMachine(t)
	tm.mux.Attach(0, ModeRaw, &scriptReader{}, nil)
	p := &fdPoller{log: tm.log}
	p.Poll(tm.mux)
	if tm.mux.units[0].rxReadyAt.armed {
		t.Fatal("reader without a descriptor was scheduled")
	}
}
