package mocks

import (
	"context"

	"datanexus/internal/ledger"
	"datanexus/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) SubmitMetadata(ctx context.Context, draft model.DatasetRecordDraft, sender string) (ledger.TxHandle, error) {
	args := m.Called(ctx, draft, sender)
	return args.Get(0).(ledger.TxHandle), args.Error(1)
}

func (m *MockLedger) AwaitInclusion(ctx context.Context, h ledger.TxHandle) (*model.DatasetRecord, error) {
	args := m.Called(ctx, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatasetRecord), args.Error(1)
}

func (m *MockLedger) ReadMetadataPage(ctx context.Context, offset, limit int) ([]model.DatasetRecord, bool, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.DatasetRecord), args.Bool(1), args.Error(2)
}
