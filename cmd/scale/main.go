package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/loadsense/i2c-nau7802/pkg/i2c"
	"github.com/loadsense/i2c-nau7802/pkg/nau7802"
	"github.com/loadsense/i2c-nau7802/pkg/scale"
)

var log zerolog.Logger

func init() {
	cw := zerolog.ConsoleWriter{Out: os.Stdout}
	log = zerolog.New(cw).With().Timestamp().Logger()
}

// calibration is the persisted state the driver itself refuses to own.
type calibration struct {
	ZeroOffset        int32   `json:"zero_offset"`
	CalibrationFactor float64 `json:"calibration_factor"`
}

func loadCalibration(path string) (calibration, bool, error) {
	var cal calibration
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cal, false, nil
	}
	if err != nil {
		return cal, false, err
	}
	if err = json.Unmarshal(raw, &cal); err != nil {
		return cal, false, err
	}
	return cal, true, nil
}

func saveCalibration(path string, cal calibration) error {
	raw, err := json.MarshalIndent(cal, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func flags() (bus int, addr uint, samples int, tare bool, known float64,
	calFile string, interval time.Duration, window int, negative bool, dump bool) {
	busF := flag.Int("bus", 1, "I2C bus number (/dev/i2c-N)")
	addrF := flag.Uint("addr", uint(i2c.DefaultAddr), "I2C device address")
	samplesF := flag.Int("samples", nau7802.DefaultSamples, "readings to average per measurement")
	tareF := flag.Bool("tare", false, "recompute the zero offset with nothing on the scale")
	knownF := flag.Float64("known", 0, "weight currently on the scale, to derive a calibration factor")
	calFileF := flag.String("cal", "nau7802-cal.json", "calibration persistence file")
	intervalF := flag.Duration("interval", time.Second, "time between weight reports")
	windowF := flag.Int("window", 4, "rolling window size for the displayed weight")
	negativeF := flag.Bool("negative", false, "allow negative weights")
	dumpF := flag.Bool("dump", false, "dump the register file after initialization")
	flag.Parse()
	return *busF, *addrF, *samplesF, *tareF, *knownF, *calFileF, *intervalF, *windowF, *negativeF, *dumpF
}

func main() {
	bus, addr, samples, tare, known, calFile, interval, window, negative, dump := flags()

	ch, err := i2c.Connect(i2c.ByBusAddr(bus, uint8(addr)))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open I2C bus")
	}

	log.Info().Msgf("connected to %s", ch)

	dev := nau7802.New(ch)
	if err = dev.Begin(true); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize NAU7802")
	}

	if rev, err := dev.Revision(); err == nil {
		log.Info().Msgf("initialized NAU7802 rev 0x%X", rev)
	}

	if dump {
		regs, err := dev.ReadAllRegisters()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read NAU7802 registers")
		}
		log.Info().Any("values", regs).Msg("NAU7802 registers")
	}

	cal, found, err := loadCalibration(calFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", calFile).Msg("failed to load calibration")
	}
	if found {
		dev.SetZeroOffset(cal.ZeroOffset)
		dev.SetCalibrationFactor(cal.CalibrationFactor)
		log.Info().
			Int32("zero_offset", cal.ZeroOffset).
			Float64("calibration_factor", cal.CalibrationFactor).
			Msg("restored calibration")
	}

	if tare {
		offset, err := dev.CalculateZeroOffset(samples)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to compute zero offset")
		}
		log.Info().Int32("zero_offset", offset).Msg("scale zeroed")
	}

	if known != 0 {
		factor, err := dev.CalculateCalibrationFactor(known, samples)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to compute calibration factor")
		}
		log.Info().Float64("calibration_factor", factor).Msg("scale calibrated")
	}

	if tare || known != 0 {
		cal = calibration{
			ZeroOffset:        dev.ZeroOffset(),
			CalibrationFactor: dev.CalibrationFactor(),
		}
		if err = saveCalibration(calFile, cal); err != nil {
			log.Fatal().Err(err).Str("file", calFile).Msg("failed to save calibration")
		}
		log.Info().Str("file", calFile).Msg("calibration saved")
	}

	if dev.CalibrationFactor() == 0 {
		log.Warn().Msg("no calibration factor; reporting raw averages (run with -tare, then -known)")
	}

	win := scale.NewWindow(window)
	for {
		if dev.CalibrationFactor() == 0 {
			raw, err := dev.GetAverage(samples)
			if err != nil {
				log.Error().Err(err).Msg("failed to read")
				time.Sleep(interval)
				continue
			}
			log.Info().Int32("raw", raw).Msg("reading")
			time.Sleep(interval)
			continue
		}

		weight, err := dev.Weight(negative, samples)
		if err != nil {
			log.Error().Err(err).Msg("failed to read weight")
			time.Sleep(interval)
			continue
		}
		win.Push(weight)
		log.Info().
			Float64("weight", weight).
			Float64("smoothed", win.Mean()).
			Msg("reading")
		time.Sleep(interval)
	}
}
