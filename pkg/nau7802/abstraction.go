package nau7802

// Bus is the two-wire transport the driver talks through. [pkg/i2c.Bus]
// implements it over the kernel SMBus interface; tests supply scripted
// in-memory implementations.
type Bus interface {
	// Probe checks that the device acknowledges its address.
	Probe() error

	// ReadByte reads a single register.
	ReadByte(reg byte) (byte, error)

	// WriteByte writes a single register.
	WriteByte(reg byte, value byte) error

	// ReadBlock reads len(p) consecutive bytes starting at reg.
	ReadBlock(reg byte, p []byte) (int, error)

	// Close releases the bus channel.
	Close() error
}
