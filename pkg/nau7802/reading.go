package nau7802

import (
	"fmt"
	"time"
)

// averageTimeout bounds a single averaging run. Don't average 8 samples at
// 1Hz output: that needs 8s and will time out here.
const averageTimeout = time.Second

// Available reports whether the cycle-ready bit is set, meaning an ADC
// conversion has completed and can be read.
func (d *NAU7802) Available() (bool, error) {
	d.mu.Lock()
	ready, err := d.getBit(PUCtrlCR, RegPUCtrl)
	d.mu.Unlock()
	return ready, err
}

// GetReading returns the current 24-bit conversion, sign-extended to an
// int32. Assumes the cycle-ready bit has been checked to be set.
func (d *NAU7802) GetReading() (int32, error) {
	d.mu.Lock()
	raw, err := d.getReading()
	d.mu.Unlock()
	return raw, err
}

func (d *NAU7802) getReading() (int32, error) {
	buf := get3Bytes()
	n, err := d.bus.ReadBlock(RegADCOB2, buf)
	if err != nil {
		put3Bytes(buf)
		return 0, fmt.Errorf("read conversion: %w", err)
	}
	if n < 3 {
		put3Bytes(buf)
		return 0, fmt.Errorf("%w: expected 3 bytes, got %d", ErrShortRead, n)
	}
	raw := Convert24To32(buf)
	put3Bytes(buf)
	return raw, nil
}

// GetAverage accumulates the given number of conversions as they become
// ready and returns the integer average, truncated toward zero. The run is
// bounded by a 1s wall clock.
func (d *NAU7802) GetAverage(samples int) (int32, error) {
	d.mu.Lock()
	avg, err := d.getAverage(samples)
	d.mu.Unlock()
	return avg, err
}

func (d *NAU7802) getAverage(samples int) (int32, error) {
	if samples <= 0 {
		return 0, fmt.Errorf("sample count must be positive, got %d", samples)
	}

	var total int64
	acquired := 0
	start := d.clk.Now()
	for {
		ready, err := d.getBit(PUCtrlCR, RegPUCtrl)
		if err != nil {
			return 0, err
		}
		if ready {
			raw, err := d.getReading()
			if err != nil {
				return 0, err
			}
			total += int64(raw)
			if acquired++; acquired == samples {
				break
			}
		}
		if d.clk.Since(start) > averageTimeout {
			return 0, fmt.Errorf("%w: %d of %d samples after %v",
				ErrAverageTimeout, acquired, samples, averageTimeout)
		}
		d.clk.Sleep(pollInterval)
	}

	return int32(total / int64(samples)), nil
}

// CalculateZeroOffset averages the given number of readings and stores the
// result as the zero offset. Call with the scale set up, level, at running
// temperature, and with nothing on it.
func (d *NAU7802) CalculateZeroOffset(samples int) (int32, error) {
	d.mu.Lock()
	avg, err := d.getAverage(samples)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}
	d.zeroOffset = avg
	d.mu.Unlock()
	return avg, nil
}

// SetZeroOffset loads a zero offset directly, for hosts restoring a value
// from non-volatile storage.
func (d *NAU7802) SetZeroOffset(offset int32) {
	d.mu.Lock()
	d.zeroOffset = offset
	d.mu.Unlock()
}

// ZeroOffset returns the current zero offset.
func (d *NAU7802) ZeroOffset() int32 {
	d.mu.Lock()
	offset := d.zeroOffset
	d.mu.Unlock()
	return offset
}

// CalculateCalibrationFactor averages the given number of readings with a
// known weight on the scale and derives the calibration factor from it and
// the zero offset. Zero the scale first. Units do not matter; knownWeight
// must be non-zero. Returns the new factor.
func (d *NAU7802) CalculateCalibrationFactor(knownWeight float64, samples int) (float64, error) {
	d.mu.Lock()
	avg, err := d.getAverage(samples)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}
	factor := float64(avg-d.zeroOffset) / knownWeight
	d.calFactor = factor
	d.mu.Unlock()
	return factor, nil
}

// SetCalibrationFactor loads a calibration factor directly, for hosts
// restoring a value from non-volatile storage. The factor must never be
// zero: Weight divides by it.
func (d *NAU7802) SetCalibrationFactor(factor float64) {
	d.mu.Lock()
	d.calFactor = factor
	d.mu.Unlock()
}

// CalibrationFactor returns the current calibration factor.
func (d *NAU7802) CalibrationFactor() float64 {
	d.mu.Lock()
	factor := d.calFactor
	d.mu.Unlock()
	return factor
}

// Weight averages the given number of readings and converts them to a
// weight: (average - zeroOffset) / calibrationFactor.
//
// With allowNegative false, an average below the zero offset is clamped to
// it. An unloaded scale can report slightly under its zero value, and
// without the clamp those readings turn into wildly wrong weights near
// zero.
func (d *NAU7802) Weight(allowNegative bool, samples int) (float64, error) {
	d.mu.Lock()
	avg, err := d.getAverage(samples)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}
	if !allowNegative && avg < d.zeroOffset {
		avg = d.zeroOffset
	}
	weight := float64(avg-d.zeroOffset) / d.calFactor
	d.mu.Unlock()
	return weight, nil
}
