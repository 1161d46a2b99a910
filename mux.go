package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

const numMuxUnits = 4

// Status register bits.
const (
	MUXRXREADY   = 1 << 0
	MUXTXREADY   = 1 << 1
	MUXPARITYERR = 1 << 2
	MUXFRAMEERR  = 1 << 3
	MUXOVERRUN   = 1 << 4
	MUXCTS       = 1 << 5
)

// ErrConsoleClosed ends the session when a console line reaches end of input.
var ErrConsoleClosed = errors.New("mux: console closed")

// LineMode selects how a line treats its bytes.
type LineMode uint8

const (
	ModeConsole LineMode = iota // 7 bit, DEL is backspace, EOF ends the session
	ModeRaw                     // 8 bit passthrough
)

func (m LineMode) String() string {
	switch m {
	case ModeConsole:
		return "console"
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("LineMode(%d)", uint8(m))
	}
}

// deadline is an absolute time in nanoseconds, or nothing.
type deadline struct {
	at    int64
	armed bool
}

func (d *deadline) arm(at int64)           { d.at, d.armed = at, true }
func (d *deadline) clear()                 { *d = deadline{} }
func (d *deadline) expired(now int64) bool { return d.armed && d.at <= now }
func (d deadline) String() string          { return fmt.Sprintf("%v@%d", d.armed, d.at) }

// muxUnit is one 6402 UART.
type muxUnit struct {
	in   io.Reader
	out  io.Writer
	mode LineMode

	status uint8
	lastc  uint8
	baud   int

	// txDone is the TX interrupt request. It is raised when the UART goes
	// from busy to ready and dropped when the cause register is read, so
	// it cannot be the TX_READY bit itself.
	txDone bool

	rxReadyAt deadline
	txDoneAt  deadline
}

// symbolTime is the length of one bit in nanoseconds.
func (u *muxUnit) symbolTime() int64 { return oneSecond / int64(u.baud) }

// LinePoller looks for new input on attached lines and reports it with
// Mux.ScheduleRxReady.
type LinePoller interface {
	Poll(m *Mux)
}

// Mux is a chain of MUX4 cards sharing one interrupt and cause register.
type Mux struct {
	units [numMuxUnits]muxUnit

	irqLevel   uint8
	irqEnabled bool
	cause      irqCause
	pollCount  uint32

	priority Priority
	baud     int       // applied to every unit on reset
	console  io.Writer // output here gets terminal translation
	poller   LinePoller
	err      error

	cpu   CPU
	clock Clock
	log   *slog.Logger
}

func newMux(cpu CPU, clock Clock, log *slog.Logger) *Mux {
	m := &Mux{
		baud:    9600,
		console: os.Stdout,
		cpu:     cpu,
		clock:   clock,
		log:     log,
	}
	m.reset()
	return m
}

// Attach connects unit to a pair of streams. Either may be nil.
func (m *Mux) Attach(unit int, mode LineMode, in io.Reader, out io.Writer) error {
	if unit < 0 || unit >= numMuxUnits {
		return fmt.Errorf("mux: no such unit %d", unit)
	}
	u := &m.units[unit]
	u.in, u.out, u.mode = in, out, mode
	return nil
}

// Err returns the reason the session ended, or nil while it runs.
func (m *Mux) Err() error { return m.err }

func (m *Mux) stop(err error) {
	if m.err == nil {
		m.err = err
		m.log.Info("mux: session ended", "err", err)
	}
}

func (m *Mux) reset() {
	for i := range m.units {
		u := &m.units[i]
		u.status = MUXTXREADY
		u.lastc = 0xff
		u.baud = m.baud
		u.txDone = false
		u.rxReadyAt.clear()
		u.txDoneAt.clear()
	}
	m.irqLevel = 0
	m.irqEnabled = false
	m.cause = causeNone
	m.pollCount = 0
}

// receive returns the next input byte of unit. Some interrupt handlers
// read every data register to clear a stray interrupt, so nothing is
// consumed until RX_READY is set.
func (m *Mux) receive(unit int) uint8 {
	u := &m.units[unit]
	if u.status&MUXRXREADY == 0 || u.in == nil {
		m.log.Debug("mux: not ready", "unit", unit, "lastc", hex2(u.lastc))
		return u.lastc
	}

	var b [1]byte
	n, err := u.in.Read(b[:])
	c := b[0]

	if u.mode == ModeConsole {
		if n == 0 {
			switch {
			case errors.Is(err, io.EOF):
				m.stop(ErrConsoleClosed)
			case err == nil, errors.Is(err, unix.EAGAIN), errors.Is(err, os.ErrDeadlineExceeded):
				// someone read the port with nothing there
			default:
				m.stop(fmt.Errorf("mux%d: %w", unit, err))
			}
			return u.lastc
		}
		// Some terminals send DEL for backspace.
		if c == 0x7f {
			c = 0x08
		}
	} else if n == 0 {
		m.log.Debug("mux: nothing read", "unit", unit, "err", err)
		c = 0
	}

	u.lastc = c
	return c
}

func (m *Mux) send(unit int, c uint8) {
	u := &m.units[unit]
	if u.status&MUXTXREADY == 0 {
		m.log.Warn("mux: write to busy port", "pc", pc(m.cpu), "unit", unit)
	}
	u.status &^= MUXTXREADY
	u.txDoneAt.arm(m.clock.Now() + 10*u.symbolTime())

	if u.out == nil {
		return
	}
	if u.out == m.console {
		writeTerminal(u.out, c)
		return
	}
	if u.mode == ModeConsole {
		c &= 0x7f
	}
	if _, err := u.out.Write([]byte{c}); err != nil {
		m.log.Error("mux: write failed", "unit", unit, "err", err)
	}
}

// writeTerminal shows c on an interactive terminal.
func writeTerminal(w io.Writer, c uint8) {
	c &= 0x7f
	switch {
	case c == 0x06: // cursor one position right
		io.WriteString(w, "\x1b[1C")
	case c != '\b' && c != '\n' && c != '\r' && (c < 0x20 || c == 0x7f):
		fmt.Fprintf(w, "[%02X]", c)
	default:
		w.Write([]byte{c})
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		f.Flush()
	}
}

// ScheduleRxReady is called when input arrives on unit. The data becomes
// visible one character time later, otherwise interrupts fire too fast.
func (m *Mux) ScheduleRxReady(unit int) {
	u := &m.units[unit]
	if u.rxReadyAt.armed {
		panic(fmt.Sprintf("mux%d: rx ready already scheduled", unit))
	}
	u.rxReadyAt.arm(m.clock.Now() + 10*u.symbolTime())
}

// pollable returns the input of unit if it may be polled: it has no
// pending character and no character in flight.
func (m *Mux) pollable(unit int) io.Reader {
	u := &m.units[unit]
	if u.status&MUXRXREADY != 0 || u.rxReadyAt.armed {
		return nil
	}
	return u.in
}

func (m *Mux) processEvents(unit int, now int64) {
	u := &m.units[unit]
	if u.rxReadyAt.expired(now) {
		u.rxReadyAt.clear()
		u.status |= MUXRXREADY
		m.pollCount = 0
		m.log.Debug("mux: rx ready", "unit", unit)
	}
	if u.txDoneAt.expired(now) {
		u.txDoneAt.clear()
		u.status |= MUXTXREADY
		if m.irqEnabled {
			u.txDone = true
		}
		m.log.Debug("mux: tx ready", "unit", unit, "txdone", u.txDone)
	}
}

// Tick advances every unit to now and then recomputes the interrupt.
func (m *Mux) Tick(now int64) {
	for unit := range m.units {
		m.processEvents(unit, now)
	}

	// Polling the host is slow, only do it every 16 ticks.
	if m.pollCount&0xf == 0 && m.poller != nil {
		m.poller.Poll(m)
	}
	m.pollCount++

	m.cpu.DeassertIRQ(m.irqLevel)

	cause := causeNone
	if m.irqEnabled {
		cause = arbitrate(m.units[:], m.priority)
	}
	switch {
	case cause != causeNone:
		if cause != m.cause {
			m.log.Debug("mux: irq raised", "cause", cause)
		}
		m.cpu.AssertIRQ(m.irqLevel)
	case m.cause != causeNone:
		m.log.Debug("mux: last irq acknowledged")
	}
	m.cause = cause
}

func (m *Mux) write8(addr uint16, v uint8) {
	unit, reg := decodeMux(addr)
	if unit >= numMuxUnits {
		m.log.Debug("mux: write to disabled unit", "pc", pc(m.cpu), "unit", unit, "addr", hex4(addr))
		return
	}

	switch reg {
	case muxStatus:
		// Format and speed of the 6402, not modelled.
		m.log.Debug("mux: status write", "pc", pc(m.cpu), "unit", unit, "val", hex2(v))
	case muxData:
		m.log.Debug("mux: data write", "pc", pc(m.cpu), "unit", unit, "val", printable(v))
		m.send(unit, v)
	case muxRTS:
		// Bits 1-2 are the unit, bit 0 the level.
		m.log.Debug("mux: rts", "pc", pc(m.cpu), "unit", v>>1, "rts", v&1)
	case muxIRQLevel:
		m.log.Debug("mux: irq level", "pc", pc(m.cpu), "level", v)
		m.irqLevel = v
	case muxBaud:
		m.log.Debug("mux: custom baud rate", "pc", pc(m.cpu), "val", hex2(v))
	case muxForceTX:
		// OPSYS polls TX_READY itself, then writes the unit number plus
		// one here and waits for the TX interrupt.
		n := int(v) - 1
		if n < 0 || n >= numMuxUnits {
			m.log.Warn("mux: force tx on missing unit", "pc", pc(m.cpu), "val", v)
			return
		}
		m.units[n].txDone = true
	case muxIRQDisable:
		m.log.Debug("mux: irq enable", "pc", pc(m.cpu), "enable", false)
		m.irqEnabled = false
	case muxIRQEnable:
		m.log.Debug("mux: irq enable", "pc", pc(m.cpu), "enable", true)
		m.irqEnabled = true
	case muxReset:
		m.log.Debug("mux: reset", "pc", pc(m.cpu))
		m.cpu.DeassertIRQ(m.irqLevel)
		m.reset()
	default:
		m.log.Warn("mux: write to unknown register", "pc", pc(m.cpu), "addr", hex4(addr), "val", hex2(v))
	}
}

func (m *Mux) read8(addr uint16) uint8 {
	if addr == muxCause {
		c := m.cause
		m.log.Debug("mux: cause read", "pc", pc(m.cpu), "cause", c)
		// Reading the cause acknowledges a TX interrupt. RX stays until
		// the data register is read.
		if c.tx() && c.unit() < numMuxUnits {
			m.units[c.unit()].txDone = false
			m.log.Debug("mux: tx irq acknowledged", "unit", c.unit())
		}
		return c.value()
	}

	unit, reg := decodeMux(addr)
	if unit >= numMuxUnits {
		m.log.Warn("mux: read from disabled unit", "pc", pc(m.cpu), "unit", unit, "addr", hex4(addr))
		return 0xff
	}

	switch reg {
	case muxStatus:
		v := m.units[unit].status | MUXCTS
		m.log.Debug("mux: status read", "pc", pc(m.cpu), "unit", unit, "val", hex2(v))
		return v
	case muxData:
		v := m.receive(unit)
		m.units[unit].status &^= MUXRXREADY
		m.log.Debug("mux: data read", "pc", pc(m.cpu), "unit", unit, "val", printable(v))
		return v
	default:
		m.log.Warn("mux: read from unknown register", "pc", pc(m.cpu), "unit", unit, "reg", reg)
		return 0xff
	}
}

// printable formats c for traces, with the character when it has one.
func printable(c uint8) string {
	if c&0x7f >= 0x20 && c != 0x7f && c != 0xff {
		return fmt.Sprintf("%02X ('%c')", c, c&0x7f)
	}
	return hex2(c)
}
