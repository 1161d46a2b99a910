package main

import "testing"

func TestDecodeHawk(t *testing.T) {
	tests := []struct {
		addr uint16
		want hawkReg
	}{
		{0xf140, hawkSelect},
		{0xf141, hawkCylHigh},
		{0xf142, hawkCylLow},
		{0xf143, hawkUnknown},
		{0xf144, hawkStatusHigh},
		{0xf145, hawkStatusLow},
		{0xf146, hawkUnknown},
		{0xf148, hawkCommand},
		{0xf14f, hawkUnknown},
	}
	for _, tt := range tests {
		if got := decodeHawk(tt.addr); got != tt.want {
			t.Errorf("decodeHawk(%04X): got %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestDecodeMux(t *testing.T) {
	tests := []struct {
		addr uint16
		unit int
		reg  muxReg
	}{
		{0xf200, 0, muxStatus},
		{0xf201, 0, muxData},
		{0xf202, 1, muxStatus},
		{0xf203, 1, muxData},
		{0xf204, 2, muxStatus},
		{0xf207, 3, muxData},
		{0xf208, 0, muxRTS},
		{0xf209, 0, muxUnknown},
		{0xf20a, 0, muxIRQLevel},
		{0xf20b, 0, muxBaud},
		{0xf20c, 0, muxForceTX},
		{0xf20d, 0, muxIRQDisable},
		{0xf20e, 0, muxIRQEnable},
		{0xf20f, 0, muxReset},
		{0xf210, 4, muxStatus},
		{0xf215, 6, muxData},
		{0xf21e, 4, muxIRQEnable},
		{0xf2f7, 63, muxData},
	}
	for _, tt := range tests {
		unit, reg := decodeMux(tt.addr)
		if unit != tt.unit || reg != tt.reg {
			t.Errorf("decodeMux(%04X): got %d/%v, want %d/%v", tt.addr, unit, reg, tt.unit, tt.reg)
		}
		if reg.control() != (tt.addr&0xf > 7) {
			t.Errorf("%v.control(): got %v", reg, reg.control())
		}
	}
}
