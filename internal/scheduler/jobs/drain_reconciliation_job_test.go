package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/services"
)

func Test_drainReconciliationJob_GetInterval(t *testing.T) {
	t.Run("uses the configured interval", func(t *testing.T) {
		job := NewDrainReconciliationJob(DrainReconciliationJobOptions{
			JobIntervalSeconds:    30,
			ReconciliationService: &services.MockDrainReconciliationService{},
		})
		require.Equal(t, 30*time.Second, job.GetInterval())
	})

	t.Run("falls back to the minimum interval", func(t *testing.T) {
		job := NewDrainReconciliationJob(DrainReconciliationJobOptions{
			ReconciliationService: &services.MockDrainReconciliationService{},
		})
		require.Equal(t, DefaultMinimumJobIntervalSeconds*time.Second, job.GetInterval())
	})
}

func Test_drainReconciliationJob_GetName(t *testing.T) {
	job := NewDrainReconciliationJob(DrainReconciliationJobOptions{
		ReconciliationService: &services.MockDrainReconciliationService{},
	})
	require.Equal(t, drainReconciliationJobName, job.GetName())
}

func Test_drainReconciliationJob_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		prepareMocksFn  func(mReconciliationService *services.MockDrainReconciliationService)
		wantErrContains string
	}{
		{
			name: "🔴 execution fails",
			prepareMocksFn: func(mReconciliationService *services.MockDrainReconciliationService) {
				mReconciliationService.
					On("Reconcile", ctx).
					Return(assert.AnError).
					Once()
			},
			wantErrContains: "executing Job",
		},
		{
			name: "🟢 execution succeeds",
			prepareMocksFn: func(mReconciliationService *services.MockDrainReconciliationService) {
				mReconciliationService.
					On("Reconcile", ctx).
					Return(nil).
					Once()
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mReconciliationService := &services.MockDrainReconciliationService{}
			tc.prepareMocksFn(mReconciliationService)
			job := drainReconciliationJob{
				jobIntervalSeconds:    5,
				reconciliationService: mReconciliationService,
			}

			err := job.Execute(ctx)
			if tc.wantErrContains != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tc.wantErrContains)
			} else {
				require.NoError(t, err)
			}
			mReconciliationService.AssertExpectations(t)
		})
	}
}
