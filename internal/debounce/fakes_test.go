package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// FakeStore is an in-memory ControlStore for tests.
type FakeStore struct {
	States map[string]*model.DebounceState

	GetErr      error
	IncrErr     error
	ResetErr    error
	LastSentErr error

	ResetCalls []string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{States: make(map[string]*model.DebounceState)}
}

func (f *FakeStore) state(alertID string) *model.DebounceState {
	state, ok := f.States[alertID]
	if !ok {
		state = &model.DebounceState{AlertID: alertID}
		f.States[alertID] = state
	}
	return state
}

func (f *FakeStore) Get(ctx context.Context, alertID string) (*model.DebounceState, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	state := f.state(alertID)
	copied := *state
	return &copied, nil
}

func (f *FakeStore) UpdateValidation(ctx context.Context, alertID string) (int64, error) {
	if f.IncrErr != nil {
		return 0, f.IncrErr
	}
	state := f.state(alertID)
	state.ValidationCount++
	return state.ValidationCount, nil
}

func (f *FakeStore) ResetValidation(ctx context.Context, alertID string) error {
	if f.ResetErr != nil {
		return f.ResetErr
	}
	f.ResetCalls = append(f.ResetCalls, alertID)
	f.state(alertID).ValidationCount = 0
	return nil
}

func (f *FakeStore) UpdateLastSent(ctx context.Context, alertID string, sentAt time.Time) error {
	if f.LastSentErr != nil {
		return f.LastSentErr
	}
	f.state(alertID).LastSent = &sentAt
	return nil
}

// FakeGateway records sent notifications.
type FakeGateway struct {
	Sent    []*model.NotificationRecord
	SendErr error
}

func (f *FakeGateway) Send(ctx context.Context, record *model.NotificationRecord) error {
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, record)
	return nil
}

// FakeAudit records appended history entries.
type FakeAudit struct {
	Created   []*model.NotificationRecord
	CreateErr error
}

func (f *FakeAudit) Create(ctx context.Context, record *model.NotificationRecord) (string, error) {
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.Created = append(f.Created, record)
	return fmt.Sprintf("audit-%d", len(f.Created)), nil
}
