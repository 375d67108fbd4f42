package mocks

import (
	"context"

	"datanexus/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRegistrationJournal struct {
	mock.Mock
}

func (m *MockRegistrationJournal) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationJournal) UpdatePhase(ctx context.Context, id string, phase model.Phase, txHash string) error {
	args := m.Called(ctx, id, phase, txHash)
	return args.Error(0)
}

func (m *MockRegistrationJournal) FindByCID(ctx context.Context, cid string) (*model.Registration, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationJournal) ListByPhase(ctx context.Context, phase model.Phase, limit int) ([]model.Registration, error) {
	args := m.Called(ctx, phase, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}
