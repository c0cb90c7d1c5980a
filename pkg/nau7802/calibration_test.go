package nau7802

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestCalAFEStatus(t *testing.T) {
	bus := &scriptedBus{}
	d := New(bus)

	t.Run("InProgress", func(t *testing.T) {
		bus.regs[RegCtrl2] = 1 << Ctrl2CALS
		status, err := d.CalAFEStatus()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != CalInProgress {
			t.Errorf("expected %v, got %v", CalInProgress, status)
		}
	})

	t.Run("InProgressMasksError", func(t *testing.T) {
		// CAL_ERR only means anything once CALS has self-cleared.
		bus.regs[RegCtrl2] = 1<<Ctrl2CALS | 1<<Ctrl2CALError
		status, err := d.CalAFEStatus()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != CalInProgress {
			t.Errorf("expected %v, got %v", CalInProgress, status)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		bus.regs[RegCtrl2] = 1 << Ctrl2CALError
		status, err := d.CalAFEStatus()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != CalFailure {
			t.Errorf("expected %v, got %v", CalFailure, status)
		}
	})

	t.Run("Success", func(t *testing.T) {
		bus.regs[RegCtrl2] = 0
		status, err := d.CalAFEStatus()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != CalSuccess {
			t.Errorf("expected %v, got %v", CalSuccess, status)
		}
	})
}

func TestCalibrateAFE(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		bus := &scriptedBus{calDelay: 3}
		d := New(bus)
		if err := d.CalibrateAFE(DefaultCalTimeout); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bus.regs[RegCtrl2]&(1<<Ctrl2CALS) != 0 {
			t.Error("expected CALS to have self-cleared")
		}
	})

	t.Run("Failure", func(t *testing.T) {
		bus := &scriptedBus{calDelay: 2, calErr: true}
		d := New(bus)
		err := d.CalibrateAFE(DefaultCalTimeout)
		if !errors.Is(err, ErrCalibrationFailed) {
			t.Errorf("expected ErrCalibrationFailed, got %v", err)
		}
	})

	t.Run("BeginThenWait", func(t *testing.T) {
		bus := &scriptedBus{calDelay: 2}
		d := New(bus)
		if err := d.BeginCalibrateAFE(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := d.WaitForCalibrateAFE(DefaultCalTimeout); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		bus := &scriptedBus{}
		bus.regs[RegCtrl2] = 1 << Ctrl2CALS // stuck in progress
		mock := clock.NewMock()
		d := New(bus, WithClock(mock))

		stop := advanceClock(t, mock, pollInterval)
		err := d.WaitForCalibrateAFE(50 * time.Millisecond)
		stop()

		if !errors.Is(err, ErrCalibrationTimeout) {
			t.Errorf("expected ErrCalibrationTimeout, got %v", err)
		}
	})

	t.Run("ReadFault", func(t *testing.T) {
		bus := &scriptedBus{readErr: errScriptedBus}
		d := New(bus)
		if err := d.CalibrateAFE(DefaultCalTimeout); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCalStatusString(t *testing.T) {
	for status, want := range map[CalStatus]string{
		CalSuccess:    "success",
		CalInProgress: "in progress",
		CalFailure:    "failure",
		CalStatus(42): "(invalid status)",
	} {
		if got := status.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
