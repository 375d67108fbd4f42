package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datanexus/internal/service"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListPage(ctx context.Context, offset, limit int, f service.Filter) (*service.CatalogPage, error) {
	args := m.Called(ctx, offset, limit, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CatalogPage), args.Error(1)
}

func (m *MockCatalogService) ListStoredFiles(ctx context.Context) (*service.StoredFilesResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFilesResult), args.Error(1)
}
