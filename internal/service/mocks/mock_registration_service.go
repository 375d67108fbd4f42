package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datanexus/internal/model"
	"datanexus/internal/service"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, req service.RegistrationRequest) (*model.DatasetRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatasetRecord), args.Error(1)
}

func (m *MockRegistrationService) Status(ctx context.Context, cid string) (*model.Registration, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationService) Reconcile(ctx context.Context) (*service.ReconcileReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileReport), args.Error(1)
}
