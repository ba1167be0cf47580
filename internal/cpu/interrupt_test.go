package cpu

import (
	"testing"

	"github.com/Div9851/gb-go/internal/irq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptDispatch(t *testing.T) {
	type testArgs struct {
		request  []irq.Source
		vector   uint16
		remained uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, mem, i := newTestCPU(0x00)
		cpu.IME = true
		i.IE = 0x1F
		for _, s := range in.request {
			i.Request(s)
		}

		cycles, err := cpu.Step()
		require.NoError(t, err)
		assert.Equal(t, 20, cycles)
		assert.Equal(t, in.vector, cpu.PC)
		assert.False(t, cpu.IME)
		assert.Equal(t, in.remained, i.IF)
		assert.Equal(t, uint8(programStart>>8), mem[0xFFEF])
		assert.Equal(t, uint8(programStart&0xFF), mem[0xFFEE])
	}

	t.Run("vblank", func(t *testing.T) {
		testDo(t, testArgs{request: []irq.Source{irq.VBlank}, vector: 0x40})
	})
	t.Run("joypad", func(t *testing.T) {
		testDo(t, testArgs{request: []irq.Source{irq.Joypad}, vector: 0x60})
	})
	t.Run("priority", func(t *testing.T) {
		testDo(t, testArgs{request: []irq.Source{irq.Serial, irq.STAT}, vector: 0x48, remained: irq.Serial.Bit()})
	})
}

func TestDisabledInterruptIsNotServiced(t *testing.T) {
	cpu, _, i := newTestCPU(0x00)
	cpu.IME = true
	i.IE = irq.VBlank.Bit()
	i.Request(irq.Timer)

	cycles, _ := cpu.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(programStart+1), cpu.PC)
}

func TestRequestTwiceDispatchesOnce(t *testing.T) {
	cpu, mem, i := newTestCPU()
	mem[0x50] = 0x00
	cpu.IME = true
	i.IE = 0x1F
	i.Request(irq.Timer)
	i.Request(irq.Timer)

	cycles, _ := cpu.Step()
	assert.Equal(t, 20, cycles)
	// the handler runs with IME clear, so nothing is dispatched again
	cycles, _ = cpu.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x51), cpu.PC)
	assert.Zero(t, i.IF)
}

func TestEIDelay(t *testing.T) {
	// EI; NOP; NOP
	cpu, _, i := newTestCPU(0xFB, 0x00, 0x00)
	i.IE = 0x1F
	i.Request(irq.VBlank)

	cpu.Step()
	assert.Equal(t, uint16(programStart+1), cpu.PC)
	cpu.Step()
	assert.Equal(t, uint16(programStart+2), cpu.PC)
	cycles, _ := cpu.Step()
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x40), cpu.PC)
}

func TestDICancelsEI(t *testing.T) {
	// EI; DI; NOP
	cpu, _, i := newTestCPU(0xFB, 0xF3, 0x00)
	i.IE = 0x1F
	i.Request(irq.VBlank)

	cpu.Step()
	cpu.Step()
	cpu.Step()
	assert.False(t, cpu.IME)
	assert.Equal(t, uint16(programStart+3), cpu.PC)
}

func TestRETIEnablesImmediately(t *testing.T) {
	cpu, mem, i := newTestCPU(0xD9)
	mem[0xFFF0] = 0x00
	mem[0xFFF1] = 0x03
	i.IE = 0x1F
	i.Request(irq.Timer)

	cpu.Step()
	assert.True(t, cpu.IME)
	cycles, _ := cpu.Step()
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x50), cpu.PC)
}

func TestHaltWakesWithoutIME(t *testing.T) {
	// HALT; INC A
	cpu, _, i := newTestCPU(0x76, 0x3C)
	i.IE = irq.Timer.Bit()

	cpu.Step()
	require.True(t, cpu.Halted())
	for n := 0; n < 3; n++ {
		cycles, _ := cpu.Step()
		assert.Equal(t, 4, cycles)
		assert.Equal(t, uint16(programStart+1), cpu.PC)
	}

	i.Request(irq.Timer)
	cpu.Step()
	assert.False(t, cpu.Halted())
	assert.Equal(t, uint8(1), cpu.A)
	assert.Equal(t, irq.Timer.Bit(), i.IF)
}

func TestHaltWakesDisabledSourceOnlyWhenEnabledInIE(t *testing.T) {
	cpu, _, i := newTestCPU(0x76, 0x00)
	i.IE = irq.VBlank.Bit()

	cpu.Step()
	i.Request(irq.Serial)
	cpu.Step()
	assert.True(t, cpu.Halted())
}

func TestHaltWithIMEDispatches(t *testing.T) {
	cpu, _, i := newTestCPU(0x76, 0x00)
	cpu.IME = true
	i.IE = 0x1F

	cpu.Step()
	require.True(t, cpu.Halted())
	i.Request(irq.STAT)

	cycles, _ := cpu.Step()
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x48), cpu.PC)
	assert.False(t, cpu.Halted())
}

func TestHaltBug(t *testing.T) {
	// HALT; INC A; NOP
	cpu, _, i := newTestCPU(0x76, 0x3C, 0x00)
	i.IE = 0x1F
	i.Request(irq.Joypad)

	cpu.Step()
	assert.False(t, cpu.Halted())

	cpu.Step()
	assert.Equal(t, uint8(1), cpu.A)
	assert.Equal(t, uint16(programStart+1), cpu.PC)
	cpu.Step()
	assert.Equal(t, uint8(2), cpu.A)
	assert.Equal(t, uint16(programStart+2), cpu.PC)
}

func TestHaltBugWithPendingEI(t *testing.T) {
	// EI; HALT; NOP with INC A at the vblank vector
	cpu, mem, i := newTestCPU(0xFB, 0x76, 0x00)
	mem[0x0040] = 0x3C
	i.IE = irq.VBlank.Bit()
	i.Request(irq.VBlank)

	cpu.Step()
	cpu.Step()
	assert.False(t, cpu.Halted())

	cycles, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x0040), cpu.PC)
	assert.Equal(t, uint16(programStart+1), uint16(mem[cpu.SP+1])<<8|uint16(mem[cpu.SP]))

	cpu.Step()
	assert.Equal(t, uint8(1), cpu.A)
	assert.Equal(t, uint16(0x0041), cpu.PC)
}

func TestStop(t *testing.T) {
	cpu, _, i := newTestCPU(0x10, 0x00, 0x3C)
	resets := 0
	cpu.OnStop = func() { resets++ }

	cpu.Step()
	assert.True(t, cpu.Stopped())
	assert.Equal(t, 1, resets)
	assert.Equal(t, uint16(programStart+2), cpu.PC)

	cycles, _ := cpu.Step()
	assert.Equal(t, 4, cycles)
	i.Request(irq.Timer)
	cpu.Step()
	assert.True(t, cpu.Stopped())

	i.Request(irq.Joypad)
	cpu.Step()
	assert.False(t, cpu.Stopped())
	assert.Equal(t, uint8(1), cpu.A)
}
