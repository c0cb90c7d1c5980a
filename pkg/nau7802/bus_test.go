package nau7802

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

var errScriptedBus = errors.New("scripted bus fault")

// scriptedBus is an in-memory register file standing in for the chip. It
// models the read-only power-up-ready and cycle-ready bits, the
// self-clearing calibration-start bit, and queued conversion results, so
// the driver's poll loops can run against a deterministic device.
type scriptedBus struct {
	mu   sync.Mutex
	regs [NumRegisters]byte

	readings [][]byte // queued 3-byte conversions; the last one sticks

	probeFailures int  // Probe calls to fail before acking
	powerFail     bool // never raise the power-up ready bit
	purDelay      int  // PU_CTRL reads before ready comes up
	notReady      bool // never raise the cycle-ready bit
	calDelay      int  // CTRL2 reads a started calibration stays in progress
	calErr        bool // finish calibrations with the error bit set
	shortRead     bool // truncate block reads by one byte
	readErr       error
	writeErr      error
	closed        bool

	calCountdown int
}

func reading24(v int32) []byte {
	return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
}

func (b *scriptedBus) Probe() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.probeFailures > 0 {
		b.probeFailures--
		return errScriptedBus
	}
	return nil
}

func (b *scriptedBus) ReadByte(reg byte) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return 0, b.readErr
	}

	switch reg {
	case RegPUCtrl:
		v := b.regs[reg]
		powered := v&(1<<PUCtrlPUD) != 0 && v&(1<<PUCtrlPUA) != 0
		if powered && !b.powerFail {
			if b.purDelay > 0 {
				b.purDelay--
			} else {
				v |= 1 << PUCtrlPUR
			}
		}
		if !b.notReady {
			v |= 1 << PUCtrlCR
		}
		return v, nil
	case RegCtrl2:
		if b.calCountdown > 0 {
			b.calCountdown--
			if b.calCountdown == 0 {
				b.regs[reg] &^= 1 << Ctrl2CALS
				if b.calErr {
					b.regs[reg] |= 1 << Ctrl2CALError
				}
			}
		}
	}
	return b.regs[reg], nil
}

func (b *scriptedBus) WriteByte(reg byte, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	if reg == RegPUCtrl {
		value &^= 1<<PUCtrlPUR | 1<<PUCtrlCR // read-only bits
	}
	if reg == RegCtrl2 && value&(1<<Ctrl2CALS) != 0 && b.regs[reg]&(1<<Ctrl2CALS) == 0 {
		delay := b.calDelay
		if delay <= 0 {
			delay = 1
		}
		b.calCountdown = delay
		value &^= 1 << Ctrl2CALError // starting clears a stale result
	}
	b.regs[reg] = value
	return nil
}

func (b *scriptedBus) ReadBlock(reg byte, p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return 0, b.readErr
	}
	if b.shortRead {
		return len(p) - 1, nil
	}
	if reg == RegADCOB2 && len(b.readings) > 0 {
		copy(p, b.readings[0])
		if len(b.readings) > 1 {
			b.readings = b.readings[1:]
		}
		return len(p), nil
	}
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (b *scriptedBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// advanceClock drives a mock clock forward in the background so the
// driver's busy-wait loops make progress. The returned stop function must
// be called before inspecting results.
func advanceClock(t *testing.T, mock *clock.Mock, step time.Duration) (stop func()) {
	t.Helper()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				time.Sleep(100 * time.Microsecond)
				mock.Add(step)
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}
