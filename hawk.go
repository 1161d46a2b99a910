package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Hawk geometry. Used for offset arithmetic only, never enforced.
const (
	numHawkUnits   = 8
	hawkSectorSize = 400
	hawkSectors    = 16
	hawkHeads      = 2
	hawkCylinders  = 405
)

// Hawk commands, written to F148.
const (
	hawkCmdRead    = 0
	hawkCmdWrite   = 1
	hawkCmdSeek    = 2
	hawkCmdRestore = 3
)

// Status word bits. Where the data error lives is unknown, so it is
// repeated in every bit nobody has claimed yet.
const (
	HAWKREADY   = 1 << 4
	HAWKONTRACK = 1 << 5
	HAWKBUSY    = 1 << 8
	HAWKSEEKERR = 1 << 14
	HAWKDATAERR = 1<<10 | 1<<11 | 1<<12 | 1<<13 | 1<<15
)

// DMADirection is the direction of a disk transfer relative to memory.
type DMADirection uint8

const (
	DMARead  DMADirection = 1 // disk to memory
	DMAWrite DMADirection = 2 // memory to disk
)

func (d DMADirection) String() string {
	switch d {
	case DMARead:
		return "read"
	case DMAWrite:
		return "write"
	default:
		return fmt.Sprintf("DMADirection(%d)", uint8(d))
	}
}

// DMAEngine moves the bytes of a Hawk read or write. It calls back into
// ReadNext or WriteNext once per byte and DMADone at the end.
type DMAEngine interface {
	Begin(dir DMADirection, unit uint8)
	Stop()
}

// hawkImage is the backing store of one drive.
type hawkImage interface {
	io.ReadWriteSeeker
	io.Closer
}

// hawkStatus holds the flags that make up the status word.
type hawkStatus struct {
	ready, onTrack, busy, seekError, dataError bool
}

// word returns the 16 bit status as the firmware sees it. Bit 9 must stay
// clear after a read or the bootstrap gives up.
func (s hawkStatus) word() uint16 {
	var w uint16
	if s.ready {
		w |= HAWKREADY
	}
	if s.onTrack {
		w |= HAWKONTRACK
	}
	if s.busy {
		w |= HAWKBUSY
	}
	if s.dataError {
		w |= HAWKDATAERR
	}
	if s.seekError {
		w |= HAWKSEEKERR
	}
	return w
}

// Hawk is the CDC 9427H Hawk disk controller.
type Hawk struct {
	hawkStatus

	unit       uint8 // selected unit
	sech, secl uint8 // raw cylinder/head/sector bytes

	units [numHawkUnits]hawkImage

	cpu CPU
	dma DMAEngine
	log *slog.Logger
}

func newHawk(cpu CPU, dma DMAEngine, log *slog.Logger) *Hawk {
	return &Hawk{cpu: cpu, dma: dma, log: log}
}

// Open mounts hawk0.disk to hawk7.disk from dir. Missing images leave
// their slot permanently not ready.
func (hk *Hawk) Open(dir string) {
	for i := range hk.units {
		name := filepath.Join(dir, fmt.Sprintf("hawk%d.disk", i))
		f, err := os.OpenFile(name, os.O_RDWR, 0)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				hk.log.Warn("hawk: cannot open image", "unit", i, "err", err)
			}
			continue
		}
		hk.units[i] = f
		hk.log.Info("hawk: mounted", "unit", i, "image", name)
	}
}

// Mount binds an open image to unit.
func (hk *Hawk) Mount(unit int, img hawkImage) error {
	if unit < 0 || unit >= numHawkUnits {
		return fmt.Errorf("hawk: no such unit %d", unit)
	}
	if hk.units[unit] != nil {
		return fmt.Errorf("hawk: unit %d already mounted", unit)
	}
	hk.units[unit] = img
	return nil
}

// Close closes every mounted image.
func (hk *Hawk) Close() error {
	var errs []error
	for i, u := range hk.units {
		if u == nil {
			continue
		}
		if err := u.Close(); err != nil {
			errs = append(errs, fmt.Errorf("hawk%d: %w", i, err))
		}
		hk.units[i] = nil
	}
	return errors.Join(errs...)
}

func (hk *Hawk) image() hawkImage {
	if hk.unit >= numHawkUnits {
		return nil
	}
	return hk.units[hk.unit]
}

// chs decodes the sector registers.
//
//	F141: C256 C128 C64 C32 C16 C8 C4 C2
//	F142: C1 ... H S8 S4 S2 S1
func (hk *Hawk) chs() (cyl, head, sec uint) {
	sec = uint(hk.secl & 0x0f)
	head = uint(hk.secl>>4) & 1
	cyl = uint(hk.sech)<<3 | uint(hk.secl>>5)
	return cyl, head, sec
}

// hawkCHS packs a disk address into the two sector register bytes.
func hawkCHS(cyl, head, sec uint) (hi, lo uint8) {
	return uint8(cyl >> 3), uint8(cyl&7)<<5 | uint8(head&1)<<4 | uint8(sec&0xf)
}

func hawkOffset(cyl, head, sec uint) int64 {
	return ((int64(cyl)*hawkHeads+int64(head))*hawkSectors + int64(sec)) * hawkSectorSize
}

func (hk *Hawk) position() {
	cyl, head, sec := hk.chs()
	offset := hawkOffset(cyl, head, sec)

	hk.onTrack = false
	img := hk.image()
	if img == nil {
		hk.seekError = true
		hk.log.Debug("hawk: position on empty unit", "pc", pc(hk.cpu), "unit", hk.unit)
		return
	}
	if _, err := img.Seek(offset, io.SeekStart); err != nil {
		hk.log.Error("hawk: position failed", "pc", pc(hk.cpu),
			"cyl", cyl, "head", head, "sec", sec, "offset", fmt.Sprintf("%x", offset), "err", err)
		hk.seekError = true
		return
	}
	hk.onTrack = true
}

// ReadNext returns the next byte of a read. On error the byte is
// meaningless but the transfer keeps going.
func (hk *Hawk) ReadNext() uint8 {
	img := hk.image()
	if img == nil {
		hk.dataError = true
		return 0xff
	}
	var b [1]byte
	if _, err := io.ReadFull(img, b[:]); err != nil {
		hk.log.Error("hawk: I/O error", "unit", hk.unit, "err", err)
		hk.dataError = true
	}
	return b[0]
}

// WriteNext stores the next byte of a write.
func (hk *Hawk) WriteNext(c uint8) {
	img := hk.image()
	if img == nil {
		hk.dataError = true
		return
	}
	if _, err := img.Write([]byte{c}); err != nil {
		hk.log.Error("hawk: I/O error", "unit", hk.unit, "err", err)
		hk.dataError = true
	}
}

// DMADone finishes a read or write. A transfer without a good seek
// before it is always an error.
func (hk *Hawk) DMADone() {
	hk.dma.Stop()
	hk.busy = false
	hk.dataError = !hk.onTrack
}

func (hk *Hawk) command(cmd uint8) {
	hk.log.Debug("hawk: command", "pc", pc(hk.cpu), "unit", hk.unit, "cmd", hex2(cmd))

	// Issuing a command seems to clear errors.
	hk.dataError = false
	hk.seekError = false

	switch cmd {
	case hawkCmdRead: // 1 to 16 sectors, length set by the DMA count
		hk.busy = true
		hk.dma.Begin(DMARead, hk.unit)
	case hawkCmdWrite:
		hk.busy = true
		hk.dma.Begin(DMAWrite, hk.unit)
	case hawkCmdSeek:
		hk.busy = false
		hk.position()
	case hawkCmdRestore:
		// Return to track zero, then seek to the requested track.
		hk.position()
	default:
		// 4 is possibly format.
		hk.log.Warn("hawk: unknown command", "pc", pc(hk.cpu), "cmd", hex2(cmd))
		hk.busy = false
	}
}

func (hk *Hawk) write8(addr uint16, v uint8) {
	switch decodeHawk(addr) {
	case hawkSelect:
		hk.unit = v
		hk.ready = hk.image() != nil
		if v >= numHawkUnits {
			hk.log.Warn("hawk: select of missing unit", "pc", pc(hk.cpu), "unit", v)
		}
		hk.log.Debug("hawk: select", "unit", v, "ready", hk.ready)
	case hawkCylHigh:
		hk.sech = v
	case hawkCylLow:
		hk.secl = v
	case hawkStatusHigh, hawkStatusLow:
		// Done early in boot, assumed to acknowledge errors.
		hk.dataError = false
	case hawkCommand:
		hk.command(v)
	default:
		hk.log.Warn("hawk: unknown I/O write", "pc", pc(hk.cpu), "addr", hex4(addr), "val", hex2(v))
	}
}

func (hk *Hawk) read8(addr uint16) uint8 {
	switch decodeHawk(addr) {
	case hawkStatusHigh:
		v := uint8(hk.word() >> 8)
		hk.log.Debug("hawk: status read high", "pc", pc(hk.cpu), "val", hex2(v))
		return v
	case hawkStatusLow:
		v := uint8(hk.word())
		hk.log.Debug("hawk: status read low", "pc", pc(hk.cpu), "val", hex2(v))
		return v
	case hawkCommand:
		if hk.busy {
			return 1
		}
		return 0
	default:
		hk.log.Warn("hawk: unknown I/O read", "pc", pc(hk.cpu), "addr", hex4(addr))
		return 0xff
	}
}
