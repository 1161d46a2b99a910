package main

import (
	"fmt"
	"log/slog"
)

const (
	hawkBase = 0xf140
	muxBase  = 0xf200

	// muxCause is shared by every card through the daisy chain.
	muxCause = 0xf20f
)

// hawkReg is a register of the Hawk controller window.
type hawkReg uint8

const (
	hawkUnknown    hawkReg = iota
	hawkSelect             // F140 W unit select
	hawkCylHigh            // F141 W cylinder bits 8-1
	hawkCylLow             // F142 W cylinder bit 0, head, sector
	hawkStatusHigh         // F144 R status 15-8, W clear
	hawkStatusLow          // F145 R status 7-0, W clear
	hawkCommand            // F148 W command, R busy
)

var hawkRegNames = [...]string{"unknown", "select", "cylhigh", "cyllow", "statushigh", "statuslow", "command"}

func (r hawkReg) String() string {
	if int(r) < len(hawkRegNames) {
		return hawkRegNames[r]
	}
	return fmt.Sprintf("hawkReg(%d)", uint8(r))
}

func decodeHawk(addr uint16) hawkReg {
	switch addr {
	case 0xf140:
		return hawkSelect
	case 0xf141:
		return hawkCylHigh
	case 0xf142:
		return hawkCylLow
	case 0xf144:
		return hawkStatusHigh
	case 0xf145:
		return hawkStatusLow
	case 0xf148:
		return hawkCommand
	default:
		return hawkUnknown
	}
}

// muxReg is a register of a MUX4 card. The low nibble of the address
// selects it: 0-7 are per port status/data pairs, 8-F are card controls.
type muxReg uint8

const (
	muxStatus     muxReg = iota // even, port in bits 1-2
	muxData                     // odd, port in bits 1-2
	muxRTS                      // 8
	muxUnknown                  // 9
	muxIRQLevel                 // A
	muxBaud                     // B
	muxForceTX                  // C
	muxIRQDisable               // D
	muxIRQEnable                // E
	muxReset                    // F
)

var muxRegNames = [...]string{"status", "data", "rts", "unknown", "irqlevel", "baud", "forcetx", "irqdisable", "irqenable", "reset"}

func (r muxReg) String() string {
	if int(r) < len(muxRegNames) {
		return muxRegNames[r]
	}
	return fmt.Sprintf("muxReg(%d)", uint8(r))
}

// control reports whether r is card wide rather than per port.
func (r muxReg) control() bool { return r >= muxRTS }

func decodeMux(addr uint16) (unit int, reg muxReg) {
	card := int(addr>>4) & 0xf
	n := addr & 0xf
	if n > 7 {
		return card * 4, muxRTS + muxReg(n-8)
	}
	port := int(n>>1) & 3
	return card*4 + port, muxReg(n & 1)
}

// Machine owns the peripherals and routes CPU bus cycles to them.
type Machine struct {
	hawk *Hawk
	mux  *Mux
	cpu  CPU
	log  *slog.Logger
}

func newMachine(cpu CPU, clock Clock, dma DMAEngine, log *slog.Logger) *Machine {
	return &Machine{
		hawk: newHawk(cpu, dma, log),
		mux:  newMux(cpu, clock, log),
		cpu:  cpu,
		log:  log,
	}
}

// read8 reads addr from the I/O page.
func (m *Machine) read8(addr uint16) uint8 {
	switch addr & 0xfff0 {
	case hawkBase:
		return m.hawk.read8(addr)
	}
	if addr&0xff00 == muxBase {
		return m.mux.read8(addr)
	}
	m.log.Warn("bus: read from invalid address", "pc", pc(m.cpu), "addr", hex4(addr))
	return 0xff
}

// write8 writes v to addr on the I/O page.
func (m *Machine) write8(addr uint16, v uint8) {
	switch addr & 0xfff0 {
	case hawkBase:
		m.hawk.write8(addr, v)
		return
	}
	if addr&0xff00 == muxBase {
		m.mux.write8(addr, v)
		return
	}
	m.log.Warn("bus: write to invalid address", "pc", pc(m.cpu), "addr", hex4(addr), "val", hex2(v))
}

func pc(cpu CPU) string { return hex4(cpu.PC()) }

func hex4(v uint16) string { return fmt.Sprintf("%04X", v) }
func hex2(v uint8) string  { return fmt.Sprintf("%02X", v) }
