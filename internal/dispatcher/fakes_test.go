package dispatcher

import (
	"context"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// FakeRegistry is a test fake for AlertRegistry.
type FakeRegistry struct {
	Alerts  map[string][]model.Alert
	ListErr error
	Calls   []string
}

func (f *FakeRegistry) ListByMeter(ctx context.Context, meterID string) ([]model.Alert, error) {
	f.Calls = append(f.Calls, meterID)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Alerts[meterID], nil
}

// FakeController is a test fake for StreakController.
type FakeController struct {
	Advanced   []string
	Resets     []string
	SendOn     map[string]bool
	AdvanceErr error
	ResetErr   error
}

func (f *FakeController) Advance(ctx context.Context, alert *model.Alert) (bool, error) {
	if f.AdvanceErr != nil {
		return false, f.AdvanceErr
	}
	f.Advanced = append(f.Advanced, alert.ID)
	return f.SendOn[alert.ID], nil
}

func (f *FakeController) Reset(ctx context.Context, alertID string) error {
	if f.ResetErr != nil {
		return f.ResetErr
	}
	f.Resets = append(f.Resets, alertID)
	return nil
}
