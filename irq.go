package main

import "fmt"

// CPU is the slice of the processor the peripherals talk to.
type CPU interface {
	AssertIRQ(level uint8)
	DeassertIRQ(level uint8)

	// PC is used for diagnostics only.
	PC() uint16
}

// irqLines is a CPU interrupt input that records which levels are
// currently asserted.
type irqLines struct {
	asserted [16]bool
	pc       uint16
}

func (l *irqLines) AssertIRQ(level uint8)   { l.asserted[level&0xf] = true }
func (l *irqLines) DeassertIRQ(level uint8) { l.asserted[level&0xf] = false }
func (l *irqLines) PC() uint16              { return l.pc }

// pending returns the highest asserted level, or -1.
func (l *irqLines) pending() int {
	for i := len(l.asserted) - 1; i >= 0; i-- {
		if l.asserted[i] {
			return i
		}
	}
	return -1
}

func (l *irqLines) String() string {
	return fmt.Sprintf("irq: pending %d, pc: %04X", l.pending(), l.pc)
}
