package mocks

import (
	"context"
	"io"

	"datanexus/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, r io.Reader, fileName string, size int64) (storage.UploadResult, error) {
	args := m.Called(ctx, r, fileName, size)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]storage.StoredObject, int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]storage.StoredObject), args.Int(1), args.Error(2)
}
