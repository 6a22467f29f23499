package vic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVIC_TickAdvancesRasterLine(t *testing.T) {
	v := New(PAL6569)
	for i := 0; i < int(PAL6569.CyclesPerLine); i++ {
		v.Tick(1)
	}
	assert.Equal(t, uint16(1), v.RasterLine())
}

func TestVIC_FrameReadyOnWrap(t *testing.T) {
	v := New(NTSC6567R8)
	assert.False(t, v.ConsumeFrameReady())

	totalCyclesInFrame := uint64(NTSC6567R8.CyclesPerLine) * uint64(NTSC6567R8.RasterLines)
	for consumed := uint64(0); consumed < totalCyclesInFrame+1; consumed++ {
		v.Tick(1)
	}
	assert.True(t, v.ConsumeFrameReady())
	assert.False(t, v.ConsumeFrameReady()) // consuming clears it
}

func TestVIC_RasterIRQFiresOnCompareMatch(t *testing.T) {
	v := New(PAL6569)
	v.Write(0xD019, 0xFF)  // clear the power-on raster flag first
	v.Write(0xD012, 5)     // compare raster 5
	v.Write(0xD01A, 0x01)  // enable raster IRQ

	for !v.IRQPending() && v.RasterLine() < 10 {
		v.Tick(uint8(PAL6569.CyclesPerLine))
	}
	assert.True(t, v.IRQPending())

	v.Write(0xD019, 0x01) // acknowledge
	assert.False(t, v.IRQPending())
}

func TestVIC_BorderColorRegisterRoundtrip(t *testing.T) {
	v := New(PAL6569)
	v.Write(0xD020, 0x02)
	assert.Equal(t, byte(0x02), v.Read(0xD020))
}

func TestVIC_CollisionRegistersClearOnRead(t *testing.T) {
	v := New(PAL6569)
	v.regs[regSpriteSprite] = 0xFF
	first := v.Read(0xD01E)
	second := v.Read(0xD01E)
	assert.Equal(t, byte(0xFF), first)
	assert.Equal(t, byte(0x00), second)
}
