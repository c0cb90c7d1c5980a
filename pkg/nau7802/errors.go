package nau7802

import "errors"

var (
	// ErrConnection means the device did not acknowledge its address,
	// even after the single retry allowed for a transiently busy sensor.
	ErrConnection = errors.New("device did not acknowledge its address")

	// ErrPowerUpTimeout means the power-up ready bit never came up.
	ErrPowerUpTimeout = errors.New("timed out waiting for power-up ready")

	// ErrCalibrationFailed means the AFE reported a calibration error.
	ErrCalibrationFailed = errors.New("AFE calibration failed")

	// ErrCalibrationTimeout means calibration was still in progress when
	// the wait budget ran out.
	ErrCalibrationTimeout = errors.New("timed out waiting for AFE calibration")

	// ErrAverageTimeout means too few conversions became ready within the
	// acquisition window.
	ErrAverageTimeout = errors.New("timed out acquiring samples")

	// ErrShortRead means the conversion block read returned fewer than 3 bytes.
	ErrShortRead = errors.New("short conversion read")
)
