package main

import "fmt"

// dmaChannel is a single channel DMA controller moving bytes between a
// block of memory and the Hawk.
type dmaChannel struct {
	mem   []byte
	addr  int
	count int

	dir    DMADirection
	unit   uint8
	active bool

	hawk *Hawk
}

// Load sets the memory window of the next transfer.
func (d *dmaChannel) Load(addr, count int) error {
	if addr < 0 || count < 0 || addr+count > len(d.mem) {
		return fmt.Errorf("dma: window %04X+%d outside memory", addr, count)
	}
	d.addr, d.count = addr, count
	return nil
}

func (d *dmaChannel) Begin(dir DMADirection, unit uint8) {
	d.dir, d.unit, d.active = dir, unit, true
}

func (d *dmaChannel) Stop() {
	d.active = false
}

// Run performs the transfer armed by Begin and reports completion.
func (d *dmaChannel) Run() {
	if !d.active {
		return
	}
	for d.count > 0 {
		switch d.dir {
		case DMARead:
			d.mem[d.addr] = d.hawk.ReadNext()
		case DMAWrite:
			d.hawk.WriteNext(d.mem[d.addr])
		}
		d.addr++
		d.count--
	}
	d.hawk.DMADone()
}

func (d *dmaChannel) String() string {
	return fmt.Sprintf("dma: %s unit: %d addr: %04X count: %d active: %v", d.dir, d.unit, d.addr, d.count, d.active)
}
