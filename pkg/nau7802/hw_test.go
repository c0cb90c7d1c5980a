package nau7802

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/l0nax/go-spew/spew"

	"github.com/loadsense/i2c-nau7802/pkg/i2c"
)

var pprint = spew.ConfigState{
	Indent:                  "\t",
	MaxDepth:                0,
	DisableMethods:          false,
	DisablePointerMethods:   false,
	DisablePointerAddresses: false,
	DisableCapacities:       false,
	ContinueOnMethod:        true,
	SortKeys:                true,
	SpewKeys:                true,
	HighlightValues:         true,
	HighlightHex:            true,
}

func TestNAU7802Hardware(t *testing.T) {
	if os.Getenv("TEST_NAU7802") == "" {
		t.Skip("set 'TEST_NAU7802' in environment to run this test")
	}

	busNum := 1
	if env := os.Getenv("TEST_NAU7802_BUS"); env != "" {
		n, err := strconv.Atoi(strings.TrimSpace(env))
		if err != nil {
			t.Fatalf("bad 'TEST_NAU7802_BUS' environment variable: %v\nvalue: %s", err, env)
		}
		busNum = n
	}

	ch, err := i2c.Connect(i2c.ByBus(busNum))
	if err != nil {
		t.Fatalf("failed to open I2C bus: %v", err)
	}
	t.Logf("connected: %s", ch)

	dev := New(ch)
	if err = dev.Begin(true); err != nil {
		t.Fatalf("failed to initialize NAU7802: %v", err)
	}

	rev, err := dev.Revision()
	if err != nil {
		t.Errorf("failed to read revision: %v", err)
	}
	t.Logf("NAU7802 rev 0x%X", rev)

	regs, err := dev.ReadAllRegisters()
	if err != nil {
		t.Fatalf("failed to read registers: %v", err)
	}
	pprint.Dump(regs)

	avg, err := dev.GetAverage(4)
	if err != nil {
		t.Errorf("failed to average readings: %v", err)
	}
	t.Logf("average raw reading: %d", avg)

	if err = dev.Close(); err != nil {
		t.Errorf("failed to close NAU7802: %v", err)
	}
}
