package main

// echoFirmware stands in for the CPU. It polls line 0 through the bus
// like the boot monitor and echoes whatever it reads.
type echoFirmware struct {
	m       *Machine
	pending []byte
}

func (f *echoFirmware) step() {
	st := f.m.read8(muxBase)
	if st&MUXRXREADY != 0 {
		f.pending = append(f.pending, f.m.read8(muxBase+1))
		st = f.m.read8(muxBase)
	}
	if len(f.pending) > 0 && st&MUXTXREADY != 0 {
		f.m.write8(muxBase+1, f.pending[0])
		f.pending = f.pending[1:]
	}
}
