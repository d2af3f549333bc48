// internal/common/camunda/middleware.go
package camunda

import (
	"context"
	"strings"
	"time"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// WithInputValidation rejects jobs whose variables do not satisfy the
// activity's registered input schema before next sees them.
func WithInputValidation(v *validation.Validator, taskType string, next worker.JobHandler, eh *errors.ErrorHandler) worker.JobHandler {
	if v == nil || !v.HasSchema(taskType) {
		return next
	}
	return func(client worker.JobClient, job entities.Job) {
		if err := checkVariables(v, taskType, job.Variables); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			eh.HandleJobError(ctx, client, job, err)
			return
		}
		next(client, job)
	}
}

func checkVariables(v *validation.Validator, taskType, variables string) error {
	result, err := v.Validate(taskType, variables)
	if err != nil {
		return errors.NewParseError(err)
	}
	if !result.Valid {
		return errors.NewInputValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
