// Command c64emu is the composition root: it parses ROM/cartridge paths and
// chip variant flags, wires a c64.Machine together, and launches the
// ebiten-based renderer against it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/profile"

	"github.com/go6502/c64core/internal/c64"
	"github.com/go6502/c64core/internal/cartridge"
	"github.com/go6502/c64core/internal/cpu"
	"github.com/go6502/c64core/internal/trace"
	"github.com/go6502/c64core/internal/ui"
	"github.com/go6502/c64core/internal/vic"
)

func main() {
	var (
		basicROMPath  = flag.String("basic", "", "path to the 8KB BASIC ROM image")
		kernalROMPath = flag.String("kernal", "", "path to the 8KB KERNAL ROM image")
		charROMPath   = flag.String("chargen", "", "path to the 4KB character ROM image")
		cartPath      = flag.String("cart", "", "path to a .crt or raw .bin cartridge image (optional)")
		cpuVariant    = flag.String("cpu", "6502", "CPU variant: 6502, 6502a, 6502c, 65c02")
		vicVariant    = flag.String("vic", "pal", "VIC-II variant: pal, ntsc, ntsc-old")
		traceFlag     = flag.Bool("trace", false, "log one line per CPU instruction boundary (very chatty)")
		profileMode   = flag.String("profile", "", "enable profiling: cpu, mem, or empty to disable")
	)
	flag.Parse()

	logger := trace.Default()

	if *profileMode != "" {
		stop, err := startProfile(*profileMode)
		if err != nil {
			logger.Fatalf("couldn't start profiler: %s", err)
		}
		defer stop()
	}

	variant, err := parseCPUVariant(*cpuVariant)
	if err != nil {
		logger.Fatalf("%s", err)
	}
	vv, err := parseVICVariant(*vicVariant)
	if err != nil {
		logger.Fatalf("%s", err)
	}

	machine := c64.New(variant, vv)
	if *traceFlag {
		machine.CPU.Trace = logger.CPUTrace()
	}

	if err := loadROMs(machine, *basicROMPath, *kernalROMPath, *charROMPath); err != nil {
		logger.Fatalf("%s", err)
	}

	if *cartPath != "" {
		cart, err := loadCartridge(*cartPath)
		if err != nil {
			logger.Fatalf("couldn't load cartridge: %s", err)
		}
		machine.LoadCartridge(cart)
	} else {
		machine.Reset()
	}

	if err := ui.Run(ui.New(machine)); err != nil {
		logger.Fatalf("%s", err)
	}
}

func startProfile(mode string) (stop func(), err error) {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile).Stop, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
}

func parseCPUVariant(s string) (cpu.Variant, error) {
	switch s {
	case "6502":
		return cpu.NMOS6502, nil
	case "6502a":
		return cpu.NMOS6502A, nil
	case "6502c":
		return cpu.NMOS6502C, nil
	case "65c02":
		return cpu.CMOS65C02, nil
	default:
		return 0, fmt.Errorf("unknown CPU variant %q", s)
	}
}

func parseVICVariant(s string) (vic.Variant, error) {
	switch s {
	case "pal":
		return vic.PAL6569, nil
	case "ntsc":
		return vic.NTSC6567R8, nil
	case "ntsc-old":
		return vic.NTSC6567R56A, nil
	default:
		return vic.Variant{}, fmt.Errorf("unknown VIC variant %q", s)
	}
}

func loadROMs(machine *c64.Machine, basicPath, kernalPath, charPath string) error {
	basic, err := os.ReadFile(basicPath)
	if err != nil {
		return fmt.Errorf("couldn't read BASIC ROM: %w", err)
	}
	if err := machine.Bus.LoadBasicROM(basic); err != nil {
		return err
	}

	kernal, err := os.ReadFile(kernalPath)
	if err != nil {
		return fmt.Errorf("couldn't read KERNAL ROM: %w", err)
	}
	if err := machine.Bus.LoadKernalROM(kernal); err != nil {
		return err
	}

	chargen, err := os.ReadFile(charPath)
	if err != nil {
		return fmt.Errorf("couldn't read character ROM: %w", err)
	}
	return machine.Bus.LoadCharROM(chargen)
}

func loadCartridge(path string) (cartridge.Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read cartridge image: %w", err)
	}
	if len(data) >= 16 && string(data[:16]) == "C64 CARTRIDGE   " {
		return cartridge.LoadCRT(data)
	}
	return cartridge.LoadBin(data)
}
