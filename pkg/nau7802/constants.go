package nau7802

// Constants from the datasheet

// Register Addresses
const (
	// RegPUCtrl is the power-up control register
	RegPUCtrl = 0x00
	// RegCtrl1 is control register 1 (gain, LDO voltage, conversion-ready pin)
	RegCtrl1 = 0x01
	// RegCtrl2 is control register 2 (calibration, conversion rate, channel select)
	RegCtrl2 = 0x02
	// RegOCAL1B2 through RegGCAL2B0 hold the channel offset/gain calibration words
	RegOCAL1B2 = 0x03
	RegOCAL1B1 = 0x04
	RegOCAL1B0 = 0x05
	RegGCAL1B3 = 0x06
	RegGCAL1B2 = 0x07
	RegGCAL1B1 = 0x08
	RegGCAL1B0 = 0x09
	RegOCAL2B2 = 0x0A
	RegOCAL2B1 = 0x0B
	RegOCAL2B0 = 0x0C
	RegGCAL2B3 = 0x0D
	RegGCAL2B2 = 0x0E
	RegGCAL2B1 = 0x0F
	RegGCAL2B0 = 0x10
	// RegI2CControl is the I2C control register
	RegI2CControl = 0x11
	// RegADCOB2 is the conversion result MSB; B1/B0 follow for a 3-byte block read
	RegADCOB2 = 0x12
	RegADCOB1 = 0x13
	RegADCOB0 = 0x14
	// RegADC is the ADC control register (shared with OTP bits 32:24)
	RegADC = 0x15
	// RegOTPB1 and RegOTPB0 are the OTP read-out registers
	RegOTPB1 = 0x16
	RegOTPB0 = 0x17
	// RegPGA is the PGA control register
	RegPGA = 0x1B
	// RegPGAPwr is the PGA power control register
	RegPGAPwr = 0x1C
	// RegDeviceRev holds the chip revision code in its low nibble
	RegDeviceRev = 0x1F

	// NumRegisters is the size of the register address space (0x00 through 0x1F).
	NumRegisters = 0x20
)

// Bits for the PU_CTRL register
const (
	PUCtrlRR    = 0 // register reset
	PUCtrlPUD   = 1 // power up digital circuit
	PUCtrlPUA   = 2 // power up analog circuit
	PUCtrlPUR   = 3 // power up ready (read-only)
	PUCtrlCS    = 4 // cycle start
	PUCtrlCR    = 5 // cycle ready, conversion complete (read-only)
	PUCtrlOSCS  = 6 // system clock source select
	PUCtrlAVDDS = 7 // AVDD source select, 1 = internal LDO
)

// Bits for the CTRL1 register
const (
	Ctrl1GainShift = 0 // GAINS bits 2:0
	Ctrl1LDOShift  = 3 // VLDO bits 5:3
	Ctrl1DRDYSel   = 6 // DRDY pin function select
	Ctrl1CRP       = 7 // conversion-ready pin polarity, 1 = active low
)

// Bits for the CTRL2 register
const (
	Ctrl2CALMOD0  = 0 // calibration mode select
	Ctrl2CALMOD1  = 1
	Ctrl2CALS     = 2 // start calibration; self-clears when finished
	Ctrl2CALError = 3 // calibration result, 1 = failed
	Ctrl2CRSShift = 4 // CRS conversion rate bits 6:4
	Ctrl2CHS      = 7 // analog input channel select, 1 = channel 2
)

// Bits for the PGA_PWR register
const (
	// PGAPwrCapEn enables the 330pF decoupling capacitor on channel 2.
	PGAPwrCapEn = 7
)

// Gain selects the PGA amplification, x1 through x128.
type Gain byte

const (
	Gain1 Gain = iota
	Gain2
	Gain4
	Gain8
	Gain16
	Gain32
	Gain64
	Gain128
)

// SampleRate selects the conversion rate in samples per second.
type SampleRate byte

const (
	SPS10  SampleRate = 0b000
	SPS20  SampleRate = 0b001
	SPS40  SampleRate = 0b010
	SPS80  SampleRate = 0b011
	SPS320 SampleRate = 0b111
)

// LDOVoltage selects the internal low-drop-out regulator output.
type LDOVoltage byte

const (
	LDO4V5 LDOVoltage = iota
	LDO4V2
	LDO3V9
	LDO3V6
	LDO3V3
	LDO3V0
	LDO2V7
	LDO2V4
)

// Channel identifies one of the two differential analog inputs.
type Channel byte

const (
	Channel1 Channel = iota
	Channel2
)

func (c Channel) String() string {
	switch c {
	case Channel1:
		return "CH1"
	case Channel2:
		return "CH2"
	default:
		return "(invalid channel)"
	}
}
