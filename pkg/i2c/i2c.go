// Package i2c wraps the kernel SMBus interface into the narrow bus channel
// the NAU7802 driver consumes.
package i2c

import (
	"fmt"

	"github.com/go-daq/smbus"
)

// DefaultAddr is the NAU7802's fixed 7-bit I2C address.
const DefaultAddr uint8 = 0x2A

var ErrBadDescriptor = fmt.Errorf("invalid I2C descriptor provided")

// Descriptor names a device on a numbered I2C bus.
type Descriptor struct {
	Bus  int
	Addr uint8
}

// ByBus addresses the NAU7802 at its fixed address on the given bus.
func ByBus(bus int) Descriptor {
	return Descriptor{Bus: bus, Addr: DefaultAddr}
}

// ByBusAddr addresses an arbitrary device on the given bus.
func ByBusAddr(bus int, addr uint8) Descriptor {
	return Descriptor{Bus: bus, Addr: addr}
}

func (d Descriptor) Validate() error {
	if d.Bus < 0 || d.Addr == 0 || d.Addr > 0x7F {
		return ErrBadDescriptor
	}
	return nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("i2c-%d@0x%02X", d.Bus, d.Addr)
}

// Bus is an open channel to one device. It satisfies the driver's bus
// interface and must be closed when done.
type Bus struct {
	conn *smbus.Conn
	desc Descriptor
}

// Connect opens the bus named by the descriptor and selects the device
// address.
func Connect(desc Descriptor) (*Bus, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	conn, err := smbus.Open(desc.Bus, desc.Addr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", desc, err)
	}
	return &Bus{conn: conn, desc: desc}, nil
}

// Probe re-selects the device address, failing if the device does not ack.
func (b *Bus) Probe() error {
	if err := b.conn.SetAddr(b.desc.Addr); err != nil {
		return fmt.Errorf("probe %s: %w", b.desc, err)
	}
	return nil
}

// ReadByte reads a single register.
func (b *Bus) ReadByte(reg byte) (byte, error) {
	return b.conn.ReadReg(b.desc.Addr, reg)
}

// WriteByte writes a single register.
func (b *Bus) WriteByte(reg byte, value byte) error {
	return b.conn.WriteReg(b.desc.Addr, reg, value)
}

// ReadBlock reads len(p) consecutive registers starting at reg.
func (b *Bus) ReadBlock(reg byte, p []byte) (int, error) {
	if err := b.conn.ReadBlockData(b.desc.Addr, reg, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close releases the bus channel.
func (b *Bus) Close() error {
	return b.conn.Close()
}

func (b *Bus) String() string {
	return b.desc.String()
}
