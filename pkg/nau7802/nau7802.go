package nau7802

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type Register byte

// NAU7802 provides high-level control over a Nuvoton NAU7802 24-bit
// wheatstone bridge / load cell ADC.
//
// A handle owns its Bus exclusively. Every exported operation takes the
// device mutex, so single calls are safe from multiple goroutines, but the
// register bit operations are read-modify-write across two bus transactions
// and the chip keeps state between calls: multi-call sequences (configure,
// calibrate, read) must come from one caller.
type NAU7802 struct {
	mu  sync.Mutex
	bus Bus
	clk clock.Clock

	// Reference point for elapsed-time computation, captured at construction.
	refTime time.Time

	// Last read or written register states (for reference or debugging)
	regLR [NumRegisters]byte // "Last Read"  register data
	regLW [NumRegisters]byte // "Last Write" register data

	zeroOffset int32
	calFactor  float64
}

const (
	// pollInterval is the sleep between busy-wait polls of a status bit.
	pollInterval = time.Millisecond

	// powerUpPolls bounds the wait for the power-up ready bit (~100ms,
	// the bit typically comes up in about 200us).
	powerUpPolls = 100

	// DefaultCalTimeout is the recommended calibration wait budget.
	// Calibration typically completes in ~344ms.
	DefaultCalTimeout = time.Second

	// DefaultSamples is the default averaging depth for offset, calibration
	// factor, and weight computation.
	DefaultSamples = 8
)

// Config represents user-level configuration parameters
type Config struct {
	Gain       Gain
	SampleRate SampleRate
	LDO        LDOVoltage
	Channel    Channel

	// CalTimeout bounds the AFE calibration wait. Zero waits indefinitely.
	CalTimeout time.Duration
}

// DefaultConfig matches the chip's intended load-cell setup: gain x128,
// 80 samples per second, 3.3V internal LDO, channel 1.
func DefaultConfig() Config {
	return Config{
		Gain:       Gain128,
		SampleRate: SPS80,
		LDO:        LDO3V3,
		Channel:    Channel1,
		CalTimeout: DefaultCalTimeout,
	}
}

// Option adjusts a handle at construction time.
type Option func(*NAU7802)

// WithClock substitutes the wall clock used for poll loops and timeouts.
// Tests inject a mock so the busy-wait paths run deterministically.
func WithClock(clk clock.Clock) Option {
	return func(d *NAU7802) { d.clk = clk }
}

// New constructs a NAU7802 handle over the given bus. The bus is owned by
// the handle from here on and is released by Close.
func New(bus Bus, opts ...Option) *NAU7802 {
	d := &NAU7802{
		bus: bus,
		clk: clock.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.refTime = d.clk.Now()
	return d
}

// Uptime reports time elapsed since the handle was constructed.
func (d *NAU7802) Uptime() time.Duration {
	return d.clk.Since(d.refTime)
}

// Begin checks that the device acknowledges its address and, if initialize
// is set, runs the full power-on sequence with DefaultConfig. The sensor is
// occasionally busy and misses an ack; a second probe resolves this, so one
// failed probe is retried before giving up.
func (d *NAU7802) Begin(initialize bool) error {
	d.mu.Lock()
	if err := d.bus.Probe(); err != nil {
		if err2 := d.bus.Probe(); err2 != nil {
			d.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrConnection, errors.Join(err, err2))
		}
	}
	d.mu.Unlock()

	if !initialize {
		return nil
	}
	return d.Initialize(DefaultConfig())
}

// Initialize performs the power-on sequencing from section 9.1 of the
// datasheet: reset, power-up, LDO, gain, sample rate, chopper clock off,
// channel-2 decoupling cap, then an AFE calibration.
//
// Every step executes even if an earlier one failed; the errors are
// accumulated. A single transient failure therefore never masks the state
// of the remaining registers.
func (d *NAU7802) Initialize(cfg Config) error {
	d.mu.Lock()
	err := errors.Join(
		d.reset(),
		d.powerUp(),
		d.setLDO(cfg.LDO),
		d.setGain(cfg.Gain),
		d.setSampleRate(cfg.SampleRate),
		d.setChannel(cfg.Channel),
		d.setRegister(RegADC, 0x30), // turn off CLK_CHP
		d.setBit(PGAPwrCapEn, RegPGAPwr),
		d.calibrateAFE(cfg.CalTimeout),
	)
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

// Reconfigure applies the gain, sample rate, LDO, and channel from cfg and
// then recalibrates the AFE. The AFE must be recalibrated any time gain,
// sample rate, or channel changes; the plain setters leave that to the
// caller, Reconfigure enforces it.
func (d *NAU7802) Reconfigure(cfg Config) error {
	d.mu.Lock()
	err := errors.Join(
		d.setLDO(cfg.LDO),
		d.setGain(cfg.Gain),
		d.setSampleRate(cfg.SampleRate),
		d.setChannel(cfg.Channel),
		d.calibrateAFE(cfg.CalTimeout),
	)
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}
	return nil
}

// Reset resets all registers to their power-on defaults.
func (d *NAU7802) Reset() error {
	d.mu.Lock()
	err := d.reset()
	d.mu.Unlock()
	return err
}

func (d *NAU7802) reset() error {
	if err := d.setBit(PUCtrlRR, RegPUCtrl); err != nil {
		return err
	}
	d.clk.Sleep(pollInterval) // settle
	return d.clearBit(PUCtrlRR, RegPUCtrl)
}

// PowerUp powers the digital and analog sections and waits for the
// power-up ready bit.
func (d *NAU7802) PowerUp() error {
	d.mu.Lock()
	err := d.powerUp()
	d.mu.Unlock()
	return err
}

func (d *NAU7802) powerUp() error {
	err := errors.Join(
		d.setBit(PUCtrlPUD, RegPUCtrl),
		d.setBit(PUCtrlPUA, RegPUCtrl),
	)
	if err != nil {
		return err
	}

	for i := 0; i < powerUpPolls; i++ {
		ready, err := d.getBit(PUCtrlPUR, RegPUCtrl)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		d.clk.Sleep(pollInterval)
	}
	return ErrPowerUpTimeout
}

// PowerDown puts the chip into low-power mode.
func (d *NAU7802) PowerDown() error {
	d.mu.Lock()
	err := d.powerDown()
	d.mu.Unlock()
	return err
}

func (d *NAU7802) powerDown() error {
	return errors.Join(
		d.clearBit(PUCtrlPUD, RegPUCtrl),
		d.clearBit(PUCtrlPUA, RegPUCtrl),
	)
}

// SetGain sets the PGA gain. Values above Gain128 are clamped.
// Recalibrate the AFE afterwards (see Reconfigure).
func (d *NAU7802) SetGain(gain Gain) error {
	d.mu.Lock()
	err := d.setGain(gain)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) setGain(gain Gain) error {
	if gain > 0b111 {
		gain = 0b111
	}
	value, err := d.getRegister(RegCtrl1)
	if err != nil {
		return err
	}
	value &= 0b11111000 // clear gain bits
	value |= byte(gain)
	return d.setRegister(RegCtrl1, value)
}

// SetSampleRate sets the conversion rate. Values above 0b111 are clamped.
// Recalibrate the AFE afterwards (see Reconfigure).
func (d *NAU7802) SetSampleRate(rate SampleRate) error {
	d.mu.Lock()
	err := d.setSampleRate(rate)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) setSampleRate(rate SampleRate) error {
	if rate > 0b111 {
		rate = 0b111
	}
	value, err := d.getRegister(RegCtrl2)
	if err != nil {
		return err
	}
	value &= 0b10001111 // clear CRS bits
	value |= byte(rate) << Ctrl2CRSShift
	return d.setRegister(RegCtrl2, value)
}

// SetLDO sets the internal low-drop-out regulator voltage and selects the
// internal LDO as the analog supply. Values above 0b111 are clamped.
func (d *NAU7802) SetLDO(voltage LDOVoltage) error {
	d.mu.Lock()
	err := d.setLDO(voltage)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) setLDO(voltage LDOVoltage) error {
	if voltage > 0b111 {
		voltage = 0b111
	}
	value, err := d.getRegister(RegCtrl1)
	if err != nil {
		return err
	}
	value &= 0b11000111 // clear VLDO bits
	value |= byte(voltage) << Ctrl1LDOShift
	if err := d.setRegister(RegCtrl1, value); err != nil {
		return err
	}
	return d.setBit(PUCtrlAVDDS, RegPUCtrl) // run from the internal LDO
}

// SetChannel selects the analog input. Channel1 is the default; anything
// else selects channel 2. Recalibrate the AFE afterwards (see Reconfigure).
func (d *NAU7802) SetChannel(ch Channel) error {
	d.mu.Lock()
	err := d.setChannel(ch)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) setChannel(ch Channel) error {
	if ch == Channel1 {
		return d.clearBit(Ctrl2CHS, RegCtrl2)
	}
	return d.setBit(Ctrl2CHS, RegCtrl2)
}

// SetIntPolarityHigh makes the conversion-ready pin active high (default).
func (d *NAU7802) SetIntPolarityHigh() error {
	d.mu.Lock()
	err := d.clearBit(Ctrl1CRP, RegCtrl1)
	d.mu.Unlock()
	return err
}

// SetIntPolarityLow makes the conversion-ready pin active low.
func (d *NAU7802) SetIntPolarityLow() error {
	d.mu.Lock()
	err := d.setBit(Ctrl1CRP, RegCtrl1)
	d.mu.Unlock()
	return err
}

// Revision reports the chip revision code.
func (d *NAU7802) Revision() (byte, error) {
	d.mu.Lock()
	value, err := d.getRegister(RegDeviceRev)
	d.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return value & 0x0F, nil
}

// Close powers the chip down and releases the bus channel.
func (d *NAU7802) Close() error {
	d.mu.Lock()
	err := errors.Join(d.powerDown(), d.bus.Close())
	d.mu.Unlock()
	return err
}
