// Package ui renders the C64's video output through ebiten, consuming the
// RAM/VIC-register Snapshot the producer loop publishes over the frame
// handshake rather than touching live machine state directly. This mirrors
// the teacher's internal/ui.UI, which drives its own Bus the same way
// through Tic()/DebugInfo()/Disassemble().
package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/go6502/c64core/internal/c64"
	"github.com/go6502/c64core/internal/frame"
)

const (
	gameScreenScale  = 2
	gameScreenWidth  = 320 // C64 display area (border not included)
	gameScreenHeight = 200

	debugScreenWidth  = 286
	debugScreenHeight = gameScreenHeight * gameScreenScale
)

// VIC color register offsets within a Snapshot's VICRegs. drawScreen fills
// the display area with the background color only; the border color is
// not drawn.
const (
	regBorderColor = 0x20
	regBGColor0    = 0x21
)

// c64Palette is the fixed 16-entry VIC-II color palette (PAL luma/chroma
// approximation), indexed by the low 4 bits of a color register.
var c64Palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF}, {0xFF, 0xFF, 0xFF, 0xFF}, {0x68, 0x37, 0x2B, 0xFF}, {0x70, 0xA4, 0xB2, 0xFF},
	{0x6F, 0x3D, 0x86, 0xFF}, {0x58, 0x8D, 0x43, 0xFF}, {0x35, 0x28, 0x79, 0xFF}, {0xB8, 0xC7, 0x6F, 0xFF},
	{0x6F, 0x4F, 0x25, 0xFF}, {0x43, 0x39, 0x00, 0xFF}, {0x9A, 0x67, 0x59, 0xFF}, {0x44, 0x44, 0x44, 0xFF},
	{0x6C, 0x6C, 0x6C, 0xFF}, {0x9A, 0xD2, 0x84, 0xFF}, {0x6C, 0x5E, 0xB5, 0xFF}, {0x95, 0x95, 0x95, 0xFF},
}

// UI drives an ebiten.Game over a *c64.Machine: Update steps the machine
// (unless paused) and Draw renders whatever Snapshot the frame handshake
// most recently delivered, falling back to the last one drawn when no new
// frame has been published yet.
type UI struct {
	machine *c64.Machine
	disasm  map[uint16]string

	last *frame.Snapshot
}

// New builds a UI over machine, snapshotting its disassembly once up front
// exactly like the teacher does — re-disassembling every frame would be
// wasteful and the code a cartridge/KERNAL runs rarely self-modifies.
func New(machine *c64.Machine) *UI {
	return &UI{
		machine: machine,
		disasm:  machine.Disassemble(),
	}
}

func (ui *UI) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		ui.machine.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		ui.machine.StepOnce()
	}

	if !ui.machine.Paused() {
		if _, err := ui.machine.Step(); err != nil {
			return err
		}
	}
	ui.machine.ConsumeStepOnce()

	if snap, ok := ui.machine.Frame.TryTake(); ok {
		ui.last = snap
	}
	return nil
}

func (ui *UI) Draw(screen *ebiten.Image) {
	ui.drawScreen(screen)
	ui.drawDebugPanel(screen)
}

func (ui *UI) drawScreen(screen *ebiten.Image) {
	bg := c64Palette[0]
	if ui.last != nil {
		bg = c64Palette[ui.last.VICRegs[regBGColor0]&0x0F]
	}
	img := ebiten.NewImage(gameScreenWidth, gameScreenHeight)
	img.Fill(bg)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(gameScreenScale, gameScreenScale)
	screen.DrawImage(img, op)
}

func (ui *UI) drawDebugPanel(screen *ebiten.Image) {
	info := ui.machine.DebugInfo()

	var b strings.Builder
	fmt.Fprintf(&b, " FPS: %0.0f\n", ebiten.ActualFPS())
	fmt.Fprintf(&b, " PAUSED: %v\n", info.Paused)
	fmt.Fprintf(&b, " RASTER: %d\n", info.RasterLine)
	fmt.Fprintf(&b, " STATUS: %s\n", info.StatusString())
	fmt.Fprintf(&b, " PC: $%04X\n", info.PC)
	fmt.Fprintf(&b, " A: $%02X X: $%02X Y: $%02X\n", info.A, info.X, info.Y)
	fmt.Fprintf(&b, " SP: $%02X CYC: %d\n", info.SP, info.Cycles)

	for i := max(0, int(info.PC)-7); i < int(info.PC); i++ {
		b.WriteString(" " + ui.disasm[uint16(i)] + "\n")
	}
	b.WriteString("*" + ui.disasm[info.PC] + "\n")
	for i := int(info.PC) + 1; i < min(0xFFFF, int(info.PC)+7); i++ {
		b.WriteString(" " + ui.disasm[uint16(i)] + "\n")
	}

	offsetX := float32(gameScreenWidth * gameScreenScale)
	vector.DrawFilledRect(screen, offsetX, 0, debugScreenWidth, debugScreenHeight, color.RGBA{50, 50, 50, 255}, false)
	ebitenutil.DebugPrintAt(screen, b.String(), int(offsetX), 0)
}

func (ui *UI) Layout(_, _ int) (int, int) {
	return gameScreenWidth*gameScreenScale + debugScreenWidth, gameScreenHeight * gameScreenScale
}

// Run starts the ebiten game loop. It blocks until the window is closed.
func Run(ui *UI) error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ui.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(60)
	return ebiten.RunGame(ui)
}
