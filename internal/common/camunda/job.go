// internal/common/camunda/job.go
package camunda

import (
	"context"
	"time"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

// ExecuteFunc turns raw job variables into the variables the job completes
// with.
type ExecuteFunc func(ctx context.Context, variables string) (interface{}, error)

// JobRunner carries the lifecycle shared by every worker: metrics, a
// span, the per-job timeout, completion, and error mapping.
type JobRunner struct {
	TaskType string
	Timeout  time.Duration
	Logger   logger.Logger
	Errors   *errors.ErrorHandler
	Obs      *observability.Observability
	Retry    *RetryConfig
}

func NewJobRunner(taskType string, timeout time.Duration, log logger.Logger, obs *observability.Observability) *JobRunner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JobRunner{
		TaskType: taskType,
		Timeout:  timeout,
		Logger:   log,
		Errors:   errors.NewErrorHandler(log),
		Obs:      obs,
		Retry:    DefaultRetryConfig,
	}
}

func (r *JobRunner) Run(client worker.JobClient, job entities.Job, exec ExecuteFunc) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	ctx, span := r.Obs.StartSpan(ctx, r.TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)

	log := logger.WithTrace(ctx, r.Logger)
	log.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	output, err := exec(ctx, job.Variables)
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, string(stdErr.Code)).Inc()
		r.Obs.RecordJobProcessed(ctx, r.TaskType, "failed")
		r.Obs.RecordJobDuration(ctx, r.TaskType, time.Since(start), "failed")
		observability.EndSpan(span, err)
		r.Errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	if err := r.complete(ctx, client, job, output); err != nil {
		log.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		observability.EndSpan(span, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(time.Since(start).Seconds())
	r.Obs.RecordJobProcessed(ctx, r.TaskType, "completed")
	r.Obs.RecordJobDuration(ctx, r.TaskType, time.Since(start), "completed")
	observability.EndSpan(span, nil)
}

// complete retries transient gateway failures within the job timeout.
func (r *JobRunner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	retry := r.Retry
	if retry == nil {
		retry = DefaultRetryConfig
	}
	_, err = executeWithRetry(ctx, retry, func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	}, "complete_job")
	return err
}
