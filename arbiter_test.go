package main

import "testing"

func TestArbitrate(t *testing.T) {
	type pending struct{ rx, tx bool }
	tests := []struct {
		name     string
		units    [numMuxUnits]pending
		priority Priority
		want     irqCause
	}{
		{"idle", [4]pending{}, PriorityLowUnit, causeNone},
		{"rx0", [4]pending{{rx: true}}, PriorityLowUnit, makeCause(0, irqRX)},
		{"rx before tx", [4]pending{{rx: true, tx: true}}, PriorityLowUnit, makeCause(0, irqRX)},
		{"tx0 beats rx2", [4]pending{{tx: true}, {}, {rx: true}}, PriorityLowUnit, makeCause(0, irqTX)},
		{"tx0 beats rx1", [4]pending{{tx: true}, {rx: true}}, PriorityLowUnit, makeCause(0, irqTX)},
		{"tx1 alone", [4]pending{{}, {tx: true}}, PriorityLowUnit, makeCause(1, irqTX)},
		{"rx3 alone", [4]pending{{}, {}, {}, {rx: true}}, PriorityLowUnit, makeCause(3, irqRX)},
		{"high: rx2 beats tx0", [4]pending{{tx: true}, {}, {rx: true}}, PriorityHighUnit, makeCause(2, irqRX)},
		{"high: tx3 beats rx0", [4]pending{{rx: true}, {}, {}, {tx: true}}, PriorityHighUnit, makeCause(3, irqTX)},
		{"high: rx before tx", [4]pending{{}, {rx: true, tx: true}}, PriorityHighUnit, makeCause(1, irqRX)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var units [numMuxUnits]muxUnit
			for i, p := range tt.units {
				if p.rx {
					units[i].status |= MUXRXREADY
				}
				units[i].txDone = p.tx
			}
			if got := arbitrate(units[:], tt.priority); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// A unit's TX_READY bit alone never requests an interrupt.
func TestArbitrateTXReadyIsNotPending(t *testing.T) {
	var units [numMuxUnits]muxUnit
	for i := range units {
		units[i].status = MUXTXREADY | MUXCTS
	}
	if got := arbitrate(units[:], PriorityLowUnit); got != causeNone {
		t.Errorf("got %v, want none", got)
	}
}

func TestCause(t *testing.T) {
	tests := []struct {
		c     irqCause
		value uint8
		unit  int
		tx    bool
		str   string
	}{
		{causeNone, 0xff, -1, false, "none"},
		{makeCause(0, irqRX), 0x00, 0, false, "MUX0 RX"},
		{makeCause(0, irqTX), 0x01, 0, true, "MUX0 TX"},
		{makeCause(3, irqTX), 0x07, 3, true, "MUX3 TX"},
	}
	for _, tt := range tests {
		if tt.c.value() != tt.value || tt.c.tx() != tt.tx || tt.c.String() != tt.str {
			t.Errorf("%v: got %02X/%v, want %02X/%v", tt.c, tt.c.value(), tt.c.tx(), tt.value, tt.tx)
		}
		if tt.c != causeNone && tt.c.unit() != tt.unit {
			t.Errorf("%v: unit %d, want %d", tt.c, tt.c.unit(), tt.unit)
		}
	}
}
