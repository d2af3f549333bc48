// internal/common/camunda/middleware_test.go
package camunda

import (
	"testing"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/validation"
	"lending-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bidValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.NewValidator(&registry.ActivityRegistry{Activities: []registry.Activity{{
		ID:       "bidding.bid.place",
		TaskType: "place-bid",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"applicationId", "loanAmount"},
		},
	}}})
	require.NoError(t, err)
	return v
}

func TestCheckVariables(t *testing.T) {
	v := bidValidator(t)

	assert.NoError(t, checkVariables(v, "place-bid", `{"applicationId":"a1","loanAmount":1000}`))

	err := checkVariables(v, "place-bid", `{"applicationId":"a1"}`)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "loanAmount")

	err = checkVariables(v, "place-bid", `not json`)
	stdErr, ok = errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeParseError, stdErr.Code)
}

func TestWithInputValidation_PassThrough(t *testing.T) {
	called := false
	next := worker.JobHandler(func(worker.JobClient, entities.Job) { called = true })

	wrapped := WithInputValidation(nil, "place-bid", next, nil)
	wrapped(nil, entities.Job{})
	assert.True(t, called)

	called = false
	wrapped = WithInputValidation(bidValidator(t), "finalize-bid", next, nil)
	wrapped(nil, entities.Job{})
	assert.True(t, called)
}
