package main

import "fmt"

// irqCause is the value of the shared cause register: (unit << 1) | reason.
type irqCause int16

const (
	causeNone irqCause = -1

	irqRX = 0
	irqTX = 1
)

func makeCause(unit, reason int) irqCause { return irqCause(unit<<1 | reason) }

func (c irqCause) unit() int { return int(c) >> 1 }
func (c irqCause) tx() bool  { return c != causeNone && c&irqTX != 0 }

// value is what the firmware reads; none reads as all ones.
func (c irqCause) value() uint8 { return uint8(c) }

func (c irqCause) String() string {
	if c == causeNone {
		return "none"
	}
	if c.tx() {
		return fmt.Sprintf("MUX%d TX", c.unit())
	}
	return fmt.Sprintf("MUX%d RX", c.unit())
}

// Priority selects the order in which units compete for the interrupt.
// Within a unit RX always beats TX. Whether the hardware favours low
// or high units is unknown.
type Priority uint8

const (
	PriorityLowUnit  Priority = iota // RX0, TX0, RX1, TX1, ...
	PriorityHighUnit                 // RX3, TX3, RX2, TX2, ...
)

func (p Priority) String() string {
	switch p {
	case PriorityLowUnit:
		return "low"
	case PriorityHighUnit:
		return "high"
	default:
		return fmt.Sprintf("Priority(%d)", uint8(p))
	}
}

// arbitrate returns the cause that owns the interrupt line, or causeNone.
func arbitrate(units []muxUnit, p Priority) irqCause {
	for i := range units {
		unit := i
		if p == PriorityHighUnit {
			unit = len(units) - 1 - i
		}
		u := &units[unit]
		if u.status&MUXRXREADY != 0 {
			return makeCause(unit, irqRX)
		}
		if u.txDone {
			return makeCause(unit, irqTX)
		}
	}
	return causeNone
}
