package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestEchoFirmware(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	in := strings.NewReader("hello\r")
	var out bytes.Buffer
	is.NoErr(tm.mux.Attach(0, ModeConsole, in, &out))
	fw := &echoFirmware{m: tm.Machine}

	for i := 0; i < 200 && out.Len() < 6; i++ {
		if in.Len() > 0 && tm.mux.pollable(0) != nil {
			tm.mux.ScheduleRxReady(0)
		}
		tm.clock.now += charTime / 2
		tm.mux.Tick(tm.clock.now)
		fw.step()
	}
	is.Equal(out.String(), "hello\r")
	is.NoErr(tm.mux.Err())
}
