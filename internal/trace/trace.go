// Package trace turns a cpu.TraceFunc into structured log lines, and warns
// about bus/cartridge conditions worth a developer's attention without
// aborting emulation. It follows the teacher's plain log.Printf idiom rather
// than introducing a structured-logging dependency the rest of the pack
// never reaches for either.
package trace

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go6502/c64core/internal/cpu"
)

// Logger wraps a *log.Logger with the couple of call sites this module
// cares about: per-instruction CPU trace lines and one-off diagnostics from
// the bus/cartridge layer (unmapped regions, unsupported CRT chunks).
type Logger struct {
	*log.Logger
}

// New builds a Logger writing to w with the given prefix, matching the
// teacher's log.New(os.Stderr, ...) call at the top of main.go.
func New(w io.Writer, prefix string) *Logger {
	return &Logger{Logger: log.New(w, prefix, log.LstdFlags)}
}

// Default writes to os.Stderr, the composition root's fallback when no
// other sink was configured.
func Default() *Logger {
	return New(os.Stderr, "c64core: ")
}

// CPUTrace returns a cpu.TraceFunc that logs one line per instruction
// boundary in the teacher's disassembly format ($PC: MNEMONIC {registers}).
// Wiring it into CPU.Trace is opt-in — the composition root only does it
// behind a -trace flag, since it is far too chatty for interactive use.
func (l *Logger) CPUTrace() cpu.TraceFunc {
	return func(snap cpu.CPUSnapshot, opcode byte, mnemonic string) {
		l.Printf("$%04X: %02X %-3s A:%02X X:%02X Y:%02X SP:%02X P:%02X CYC:%d",
			snap.PC, opcode, mnemonic, snap.A, snap.X, snap.Y, snap.SP, snap.P, snap.Cycles)
	}
}

// Warnf reports a recoverable condition: an unmapped bus region, an
// unsupported CRT chip packet, an illegal opcode falling back to NOP. It
// never aborts the caller, mirroring the teacher's log.Printf-and-continue
// style at equivalent call sites.
func (l *Logger) Warnf(format string, args ...any) {
	l.Output(2, "WARN "+fmt.Sprintf(format, args...))
}
