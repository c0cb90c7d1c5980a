package nau7802

import "time"

// CalStatus is the state of an AFE calibration, derived live from the CALS
// and CAL_ERR bits in CTRL2. It is never cached.
type CalStatus int

const (
	// CalSuccess means the last calibration finished without error.
	CalSuccess CalStatus = iota
	// CalInProgress means the CALS bit has not self-cleared yet.
	CalInProgress
	// CalFailure means calibration finished with the error bit set.
	CalFailure
)

func (s CalStatus) String() string {
	switch s {
	case CalSuccess:
		return "success"
	case CalInProgress:
		return "in progress"
	case CalFailure:
		return "failure"
	default:
		return "(invalid status)"
	}
}

// CalibrateAFE calibrates the analog front end and waits for the result.
// The AFE must be recalibrated any time the gain, sample rate, or channel
// changes. Budget at least DefaultCalTimeout; a zero timeout waits
// indefinitely.
func (d *NAU7802) CalibrateAFE(timeout time.Duration) error {
	d.mu.Lock()
	err := d.calibrateAFE(timeout)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) calibrateAFE(timeout time.Duration) error {
	if err := d.setBit(Ctrl2CALS, RegCtrl2); err != nil {
		return err
	}
	return d.waitForCalibrateAFE(timeout)
}

// BeginCalibrateAFE starts an asynchronous calibration of the analog front
// end and returns immediately. Poll with CalAFEStatus or block with
// WaitForCalibrateAFE.
func (d *NAU7802) BeginCalibrateAFE() error {
	d.mu.Lock()
	err := d.setBit(Ctrl2CALS, RegCtrl2)
	d.mu.Unlock()
	return err
}

// CalAFEStatus reads the calibration status once, without blocking.
func (d *NAU7802) CalAFEStatus() (CalStatus, error) {
	d.mu.Lock()
	status, err := d.calAFEStatus()
	d.mu.Unlock()
	return status, err
}

func (d *NAU7802) calAFEStatus() (CalStatus, error) {
	inProgress, err := d.getBit(Ctrl2CALS, RegCtrl2)
	if err != nil {
		return CalFailure, err
	}
	if inProgress {
		return CalInProgress, nil
	}

	// CAL_ERR is only meaningful once CALS has self-cleared.
	failed, err := d.getBit(Ctrl2CALError, RegCtrl2)
	if err != nil {
		return CalFailure, err
	}
	if failed {
		return CalFailure, nil
	}
	return CalSuccess, nil
}

// WaitForCalibrateAFE polls until a previously started calibration leaves
// the in-progress state or the timeout elapses. A zero timeout waits
// indefinitely. Returns nil only on success.
func (d *NAU7802) WaitForCalibrateAFE(timeout time.Duration) error {
	d.mu.Lock()
	err := d.waitForCalibrateAFE(timeout)
	d.mu.Unlock()
	return err
}

func (d *NAU7802) waitForCalibrateAFE(timeout time.Duration) error {
	start := d.clk.Now()
	for {
		status, err := d.calAFEStatus()
		if err != nil {
			return err
		}
		switch status {
		case CalSuccess:
			return nil
		case CalFailure:
			return ErrCalibrationFailed
		}
		if timeout > 0 && d.clk.Since(start) > timeout {
			return ErrCalibrationTimeout
		}
		d.clk.Sleep(pollInterval)
	}
}
