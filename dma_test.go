package main

import (
	"testing"

	"github.com/matryer/is"
)

func TestDMALoad(t *testing.T) {
	is := is.New(t)
	d := &dmaChannel{mem: make([]byte, 1024)}
	is.NoErr(d.Load(0, 1024))
	is.NoErr(d.Load(1000, 24))
	is.True(d.Load(1000, 25) != nil)
	is.True(d.Load(-1, 1) != nil)
	is.True(d.Load(0, -1) != nil)
}

func TestDMAIdle(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	tm.hawk.busy = true
	is.NoErr(tm.dma.Load(0, 16))
	tm.dma.Run() // never begun
	is.True(tm.hawk.busy)
	is.Equal(tm.dma.count, 16)
}
