package cpu

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed opcode_matrix.csv
var opcodeMatrixCSV []byte

type addrMode uint8

const (
	modeIMP addrMode = iota
	modeACC
	modeIMM
	modeZP
	modeZPX
	modeZPY
	modeABS
	modeABSX
	modeABSY
	modeIND
	modeINDX
	modeINDY
	modeREL
	modeZPI   // CMOS-only: (zp)
	modeZPREL // CMOS-only: zp, rel (BBRn/BBSn)
)

func addrModeFromString(s string) (addrMode, error) {
	switch s {
	case "IMP":
		return modeIMP, nil
	case "ACC":
		return modeACC, nil
	case "IMM":
		return modeIMM, nil
	case "ZP":
		return modeZP, nil
	case "ZPX":
		return modeZPX, nil
	case "ZPY":
		return modeZPY, nil
	case "ABS":
		return modeABS, nil
	case "ABSX":
		return modeABSX, nil
	case "ABSY":
		return modeABSY, nil
	case "IND":
		return modeIND, nil
	case "INDX":
		return modeINDX, nil
	case "INDY":
		return modeINDY, nil
	case "REL":
		return modeREL, nil
	case "ZPI":
		return modeZPI, nil
	case "ZPREL":
		return modeZPREL, nil
	}
	return 0, fmt.Errorf("unknown addressing mode %q", s)
}

type instruction struct {
	mnemonic string
	mode     addrMode
	cycles   uint8
	fn       func(c *CPU)
}

// instrTables holds one fully populated 256-entry table per Variant,
// built once from the embedded opcode matrix. NMOS6502/6502A/6502C get
// identical tables since the spec treats them identically at the
// instruction level.
var instrTables [4][256]instruction

func init() {
	r := csv.NewReader(bytes.NewReader(opcodeMatrixCSV))
	r.ReuseRecord = true
	if _, err := r.Read(); err != nil { // header
		panic(fmt.Errorf("opcode matrix: couldn't read header: %w", err))
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(fmt.Errorf("opcode matrix: %w", err))
		}
		if len(record) != 5 {
			panic(fmt.Errorf("opcode matrix: row %q must have 5 fields", strings.Join(record, ",")))
		}

		opcode, err := strconv.ParseUint(strings.TrimPrefix(record[0], "0x"), 16, 8)
		if err != nil {
			panic(fmt.Errorf("opcode matrix: bad opcode %q: %w", record[0], err))
		}
		mode, err := addrModeFromString(record[2])
		if err != nil {
			panic(fmt.Errorf("opcode matrix: %w", err))
		}
		cycles, err := strconv.ParseUint(record[3], 10, 8)
		if err != nil {
			panic(fmt.Errorf("opcode matrix: bad cycle count %q: %w", record[3], err))
		}
		fn, err := handlerForMnemonic(record[1])
		if err != nil {
			panic(fmt.Errorf("opcode matrix: %w", err))
		}

		instr := instruction{mnemonic: record[1], mode: mode, cycles: uint8(cycles), fn: fn}

		variants := record[4]
		switch variants {
		case "ALL":
			for v := range instrTables {
				instrTables[v][opcode] = instr
			}
		case "NMOS":
			instrTables[NMOS6502][opcode] = instr
			instrTables[NMOS6502A][opcode] = instr
			instrTables[NMOS6502C][opcode] = instr
		case "CMOS":
			instrTables[CMOS65C02][opcode] = instr
		default:
			panic(fmt.Errorf("opcode matrix: unknown variant tag %q", variants))
		}
	}
}
