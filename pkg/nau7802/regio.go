package nau7802

import "fmt"

// LastReadRegister returns the shadow copy of the most recent read of reg.
func (d *NAU7802) LastReadRegister(reg Register) byte {
	d.mu.Lock()
	b := d.regLR[reg]
	d.mu.Unlock()
	return b
}

// Registers returns a snapshot of the last-read register shadows.
func (d *NAU7802) Registers() map[Register]byte {
	d.mu.Lock()
	r := make(map[Register]byte, NumRegisters)
	for reg, val := range d.regLR {
		r[Register(reg)] = val
	}
	d.mu.Unlock()
	return r
}

// ReadAllRegisters refreshes the shadow copies of the full register file
// and returns them. Handy for debug dumps.
func (d *NAU7802) ReadAllRegisters() (map[Register]byte, error) {
	d.mu.Lock()
	for reg := byte(0); reg < NumRegisters; reg++ {
		if _, err := d.getRegister(reg); err != nil {
			d.mu.Unlock()
			return nil, err
		}
	}
	registers := make(map[Register]byte, NumRegisters)
	for reg, val := range d.regLR {
		registers[Register(reg)] = val
	}
	d.mu.Unlock()
	return registers, nil
}

// getRegister reads a single register [regAddr].
func (d *NAU7802) getRegister(regAddr byte) (byte, error) {
	if regAddr >= NumRegisters {
		return 0, fmt.Errorf("invalid register address 0x%02X", regAddr)
	}
	value, err := d.bus.ReadByte(regAddr)
	if err != nil {
		return 0, fmt.Errorf("read register 0x%02X: %w", regAddr, err)
	}
	d.regLR[regAddr] = value
	return value, nil
}

// setRegister writes a single register [regAddr] with the given value.
func (d *NAU7802) setRegister(regAddr, value byte) error {
	if regAddr >= NumRegisters {
		return fmt.Errorf("invalid register address 0x%02X", regAddr)
	}
	if err := d.bus.WriteByte(regAddr, value); err != nil {
		return fmt.Errorf("write register 0x%02X: %w", regAddr, err)
	}
	d.regLW[regAddr] = value
	return nil
}

// setBit sets a single bit within a register. Read-modify-write: two bus
// transactions, serialized by the device mutex.
func (d *NAU7802) setBit(bitNumber, regAddr byte) error {
	value, err := d.getRegister(regAddr)
	if err != nil {
		return err
	}
	value |= 1 << bitNumber
	return d.setRegister(regAddr, value)
}

// clearBit clears a single bit within a register.
func (d *NAU7802) clearBit(bitNumber, regAddr byte) error {
	value, err := d.getRegister(regAddr)
	if err != nil {
		return err
	}
	value &^= 1 << bitNumber
	return d.setRegister(regAddr, value)
}

// getBit reads a single bit within a register.
func (d *NAU7802) getBit(bitNumber, regAddr byte) (bool, error) {
	value, err := d.getRegister(regAddr)
	if err != nil {
		return false, err
	}
	return value&(1<<bitNumber) != 0, nil
}
