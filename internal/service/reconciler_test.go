package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"filevault/internal/model"
	repoMocks "filevault/internal/repository/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T, repo *repoMocks.MockFileRepository) *Reconciler {
	t.Helper()
	// Fresh registry per test to avoid duplicate registration panics.
	rec, err := NewReconciler(repo, time.Minute, 10*time.Minute, 100, prometheus.NewRegistry())
	require.NoError(t, err)
	return rec
}

func TestReconciler_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("forces stale uploads to failed", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		rec := newTestReconciler(t, mRepo)

		stale := []model.FileRecord{
			{ID: "f1", OwnerID: "u1", Status: model.StatusUploading},
			{ID: "f2", OwnerID: "u2", Status: model.StatusUploading},
		}
		mRepo.On("FindStaleUploading", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
			// The cutoff must sit the staleness deadline in the past.
			return time.Since(cutoff) >= 10*time.Minute-time.Second
		}), 100).Return(stale, nil)
		mRepo.On("UpdateStatus", ctx, "f1", "u1", model.StatusUploading, model.StatusFailed).Return(true, nil)
		mRepo.On("UpdateStatus", ctx, "f2", "u2", model.StatusUploading, model.StatusFailed).Return(true, nil)

		res, err := rec.RunOnce(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Scanned)
		assert.Equal(t, 2, res.Reconciled)
		assert.Equal(t, 0, res.Errors)
		assert.Equal(t, float64(2), testutil.ToFloat64(rec.reconciledTotal))
		mRepo.AssertExpectations(t)
	})

	t.Run("lost swap is not an error", func(t *testing.T) {
		// A client confirm or a concurrent sweep instance got there first;
		// the record is no longer ambiguous either way.
		mRepo := new(repoMocks.MockFileRepository)
		rec := newTestReconciler(t, mRepo)

		mRepo.On("FindStaleUploading", ctx, mock.Anything, 100).
			Return([]model.FileRecord{{ID: "f1", OwnerID: "u1", Status: model.StatusUploading}}, nil)
		mRepo.On("UpdateStatus", ctx, "f1", "u1", model.StatusUploading, model.StatusFailed).Return(false, nil)

		res, err := rec.RunOnce(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Scanned)
		assert.Equal(t, 0, res.Reconciled)
		assert.Equal(t, 0, res.Errors)
	})

	t.Run("empty sweep", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		rec := newTestReconciler(t, mRepo)

		mRepo.On("FindStaleUploading", ctx, mock.Anything, 100).Return([]model.FileRecord{}, nil)

		res, err := rec.RunOnce(ctx)

		assert.NoError(t, err)
		assert.Equal(t, ReconcileResult{}, res)
	})

	t.Run("scan error aborts the sweep", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		rec := newTestReconciler(t, mRepo)

		mRepo.On("FindStaleUploading", ctx, mock.Anything, 100).Return(nil, errors.New("db fail"))

		_, err := rec.RunOnce(ctx)

		assert.Error(t, err)
	})

	t.Run("per-record error is counted and the sweep continues", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		rec := newTestReconciler(t, mRepo)

		stale := []model.FileRecord{
			{ID: "f1", OwnerID: "u1", Status: model.StatusUploading},
			{ID: "f2", OwnerID: "u2", Status: model.StatusUploading},
		}
		mRepo.On("FindStaleUploading", ctx, mock.Anything, 100).Return(stale, nil)
		mRepo.On("UpdateStatus", ctx, "f1", "u1", model.StatusUploading, model.StatusFailed).
			Return(false, errors.New("db fail"))
		mRepo.On("UpdateStatus", ctx, "f2", "u2", model.StatusUploading, model.StatusFailed).Return(true, nil)

		res, err := rec.RunOnce(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Reconciled)
		assert.Equal(t, 1, res.Errors)
	})
}

func TestReconciler_StartStop(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	rec, err := NewReconciler(mRepo, 10*time.Millisecond, 10*time.Minute, 100, prometheus.NewRegistry())
	require.NoError(t, err)

	mRepo.On("FindStaleUploading", mock.Anything, mock.Anything, 100).
		Return([]model.FileRecord{}, nil).Maybe()

	rec.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	rec.Stop()

	// Stop must be idempotent to call after the goroutine drained.
	assert.NotPanics(t, func() { rec.Stop() })
}
