package main

import (
	"os"
	"time"
)

// Clock supplies monotonic time in nanoseconds.
type Clock interface {
	Now() int64
}

const oneSecond = int64(time.Second)

type wallClock struct {
	start time.Time
}

func newWallClock() *wallClock { return &wallClock{start: time.Now()} }

// Now is measured from start so it only ever uses the monotonic reading.
func (c *wallClock) Now() int64 { return int64(time.Since(c.start)) }

// ticker drives the mux the way a line clock drives the CPU: one Tick for
// every value received from ticks, followed by step.
type ticker struct {
	clock Clock
	ticks <-chan time.Time
	mux   *Mux
	count uint64
}

// run ticks until stop fires or the mux ends the session.
func (t *ticker) run(stop <-chan os.Signal, step func()) error {
	for {
		select {
		case <-stop:
			return nil
		case <-t.ticks:
			t.count++
			t.mux.Tick(t.clock.Now())
			if step != nil {
				step()
			}
		}
		if err := t.mux.Err(); err != nil {
			return err
		}
	}
}
