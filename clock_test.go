package main

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestTickerRun(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	ticks := make(chan time.Time, 3)
	stop := make(chan os.Signal, 1)
	tk := &ticker{clock: tm.clock, ticks: ticks, mux: tm.mux}

	steps := 0
	for i := 0; i < 3; i++ {
		ticks <- time.Time{}
	}
	err := tk.run(stop, func() {
		steps++
		if steps == 3 {
			stop <- os.Interrupt
		}
	})
	is.NoErr(err)
	is.Equal(tk.count, uint64(3))
	is.Equal(steps, 3)
}

func TestTickerStopsOnSessionEnd(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	is.NoErr(tm.mux.Attach(0, ModeConsole, strings.NewReader(""), nil))
	tm.mux.ScheduleRxReady(0)
	tm.clock.now += charTime

	ticks := make(chan time.Time, 1)
	ticks <- time.Time{}
	tk := &ticker{clock: tm.clock, ticks: ticks, mux: tm.mux}
	fw := &echoFirmware{m: tm.Machine}

	is.Equal(tk.run(nil, fw.step), ErrConsoleClosed)
}

func TestWallClock(t *testing.T) {
	c := newWallClock()
	a := c.Now()
	time.Sleep(time.Millisecond)
	if b := c.Now(); b <= a {
		t.Errorf("clock went from %d to %d", a, b)
	}
}
