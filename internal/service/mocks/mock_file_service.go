package mocks

import (
	"context"

	"filevault/internal/model"
	"filevault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Reserve(ctx context.Context, ownerID string, req service.ReserveRequest) (*service.ReserveResult, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReserveResult), args.Error(1)
}

func (m *MockFileService) Confirm(ctx context.Context, ownerID, fileID string, outcome model.FileStatus) (*service.ConfirmResult, error) {
	args := m.Called(ctx, ownerID, fileID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConfirmResult), args.Error(1)
}

func (m *MockFileService) RequestDownload(ctx context.Context, ownerID, fileID string) (*service.DownloadResult, error) {
	args := m.Called(ctx, ownerID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID string, skip, limit int) (*service.FileListResult, error) {
	args := m.Called(ctx, ownerID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, ownerID, fileID string) error {
	args := m.Called(ctx, ownerID, fileID)
	return args.Error(0)
}
