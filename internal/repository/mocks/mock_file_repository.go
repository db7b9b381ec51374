package mocks

import (
	"context"
	"time"

	"filevault/internal/model"
	"filevault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	args := m.Called(ctx, rec)
	if f, ok := args.Get(0).(func(context.Context, *model.FileRecord) *model.FileRecord); ok {
		return f(ctx, rec), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	args := m.Called(ctx, id, ownerID)
	if f, ok := args.Get(0).(func(context.Context, string, string) *model.FileRecord); ok {
		return f(ctx, id, ownerID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileRepository) List(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.FileRecord], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.FileRecord]), args.Error(1)
}

func (m *MockFileRepository) UpdateStatus(ctx context.Context, id, ownerID string, expected, next model.FileStatus) (bool, error) {
	args := m.Called(ctx, id, ownerID, expected, next)
	if f, ok := args.Get(0).(func(context.Context, string, string, model.FileStatus, model.FileStatus) bool); ok {
		return f(ctx, id, ownerID, expected, next), args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockFileRepository) SoftDelete(ctx context.Context, id, ownerID string) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileRepository) FindStaleUploading(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}
