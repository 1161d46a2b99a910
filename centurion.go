// Command centurion runs the Centurion peripheral bay: Hawk disks and
// MUX4 serial lines.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Trace bool   `help:"trace register traffic to stderr"`
	Disks string `name:"disks" type:"existingdir" default:"." help:"directory holding hawk0.disk to hawk7.disk"`
}

func main() {
	var cli struct {
		Globals

		Run  runCmd  `cmd:"" default:"1" help:"run the bay with the console on line 0"`
		Dump dumpCmd `cmd:"" help:"read one sector through the controller and dump it"`
	}

	ctx := kong.Parse(&cli,
		kong.Name("centurion"),
		kong.Description("Centurion Hawk disk controller and MUX4 multiplexer."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// bay is a machine with a DMA channel, wired the way the CPU board does it.
func (g *Globals) bay(clock Clock) (*Machine, *dmaChannel) {
	irq := &irqLines{}
	dma := &dmaChannel{mem: make([]byte, 64<<10)}
	m := newMachine(irq, clock, dma, newLogger(os.Stderr, g.Trace))
	dma.hawk = m.hawk
	m.hawk.Open(g.Disks)
	return m, dma
}

type runCmd struct {
	Line     []string      `name:"line" placeholder:"UNIT=PATH" help:"attach a raw line to a file or device"`
	Baud     int           `name:"baud" default:"9600" help:"line speed, affects timing only"`
	Tick     time.Duration `name:"tick" default:"1ms" help:"mux tick interval"`
	Priority string        `name:"priority" enum:"low,high" default:"low" help:"which units win the interrupt first"`
}

func (r *runCmd) Run(g *Globals) error {
	if r.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", r.Baud)
	}
	clock := newWallClock()
	m, _ := g.bay(clock)
	defer m.hawk.Close()

	m.mux.baud = r.Baud
	if r.Priority == "high" {
		m.mux.priority = PriorityHighUnit
	}
	m.mux.reset()
	m.mux.poller = &fdPoller{log: m.log}

	cons, err := openConsole()
	if err != nil {
		return err
	}
	defer cons.restore()
	if err := m.mux.Attach(0, ModeConsole, os.Stdin, os.Stdout); err != nil {
		return err
	}

	for _, l := range r.Line {
		f, err := attachLine(m.mux, l)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	t := time.NewTicker(r.Tick)
	defer t.Stop()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	fw := &echoFirmware{m: m}
	tk := &ticker{clock: clock, ticks: t.C, mux: m.mux}
	err = tk.run(stop, fw.step)
	if errors.Is(err, ErrConsoleClosed) {
		return nil
	}
	return err
}

// attachLine parses UNIT=PATH and attaches PATH to UNIT in raw mode.
func attachLine(mux *Mux, arg string) (*os.File, error) {
	u, path, ok := strings.Cut(arg, "=")
	if !ok {
		return nil, fmt.Errorf("line %q: want UNIT=PATH", arg)
	}
	unit, err := strconv.Atoi(u)
	if err != nil {
		return nil, fmt.Errorf("line %q: %w", arg, err)
	}
	if unit == 0 {
		return nil, fmt.Errorf("line %q: unit 0 is the console", arg)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("line %q: %w", arg, err)
	}
	if err := mux.Attach(unit, ModeRaw, f, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

type dumpCmd struct {
	Unit     uint8 `arg:"" help:"drive unit"`
	Cylinder uint  `name:"cyl" help:"cylinder"`
	Head     uint  `name:"head" help:"head"`
	Sector   uint  `name:"sector" help:"sector"`
	Count    int   `name:"count" default:"400" help:"bytes to transfer"`
}

func (d *dumpCmd) Run(g *Globals) error {
	m, dma := g.bay(newWallClock())
	defer m.hawk.Close()

	hi, lo := hawkCHS(d.Cylinder, d.Head, d.Sector)
	m.write8(0xf140, d.Unit)
	m.write8(0xf141, hi)
	m.write8(0xf142, lo)
	m.write8(0xf148, hawkCmdSeek)
	if st := hawkWord(m); st&HAWKREADY == 0 || st&HAWKSEEKERR != 0 {
		return fmt.Errorf("hawk%d: seek failed, status %04X", d.Unit, st)
	}

	if err := dma.Load(0, d.Count); err != nil {
		return err
	}
	m.write8(0xf148, hawkCmdRead)
	dma.Run()
	if st := hawkWord(m); st&HAWKDATAERR != 0 {
		return fmt.Errorf("hawk%d: read failed, status %04X", d.Unit, st)
	}

	w := hex.Dumper(os.Stdout)
	defer w.Close()
	_, err := w.Write(dma.mem[:d.Count])
	return err
}

// hawkWord reads the status word the way the bootstrap does, high byte first.
func hawkWord(m *Machine) uint16 {
	return uint16(m.read8(0xf144))<<8 | uint16(m.read8(0xf145))
}
