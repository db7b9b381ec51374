package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignPut(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, size, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockPresigner) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockPresigner) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
