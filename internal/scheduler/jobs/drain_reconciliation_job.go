package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/services"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/utils"
)

type DrainReconciliationJobOptions struct {
	JobIntervalSeconds    int
	ReconciliationService services.DrainReconciliationServiceInterface
}

func NewDrainReconciliationJob(opts DrainReconciliationJobOptions) Job {
	if opts.ReconciliationService == nil {
		log.Fatalf("reconciliation service is not set for %s. Instantiation failed", drainReconciliationJobName)
	}

	return &drainReconciliationJob{
		jobIntervalSeconds:    opts.JobIntervalSeconds,
		reconciliationService: opts.ReconciliationService,
	}
}

const drainReconciliationJobName = "drainReconciliationJob"

type drainReconciliationJob struct {
	jobIntervalSeconds    int
	reconciliationService services.DrainReconciliationServiceInterface
}

func (j drainReconciliationJob) GetInterval() time.Duration {
	jobIntervalSeconds := j.jobIntervalSeconds
	if j.jobIntervalSeconds < DefaultMinimumJobIntervalSeconds {
		log.Warnf("job interval is not set for %s. Using default interval: %d seconds", j.GetName(), DefaultMinimumJobIntervalSeconds)
		jobIntervalSeconds = DefaultMinimumJobIntervalSeconds
	}
	return time.Duration(jobIntervalSeconds) * time.Second
}

func (j drainReconciliationJob) GetName() string {
	return utils.GetTypeName(j)
}

func (j drainReconciliationJob) Execute(ctx context.Context) error {
	err := j.reconciliationService.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("executing Job %s: %w", j.GetName(), err)
	}
	return nil
}

var _ Job = (*drainReconciliationJob)(nil)
