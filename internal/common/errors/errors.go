// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Ranking
	ErrCodeInvalidWeightConfiguration ErrorCode = "INVALID_WEIGHT_CONFIGURATION"
	ErrCodeEmptyPreferenceSet         ErrorCode = "EMPTY_PREFERENCE_SET"
	ErrCodePreferenceNotFound         ErrorCode = "PREFERENCE_NOT_FOUND"

	// Applications
	ErrCodeApplicationNotFound         ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeApplicationFinalized        ErrorCode = "APPLICATION_FINALIZED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"

	// Bids
	ErrCodeBidNotFound         ErrorCode = "BID_NOT_FOUND"
	ErrCodeBidValidationFailed ErrorCode = "BID_VALIDATION_FAILED"
	ErrCodeBidAlreadyFinalized ErrorCode = "BID_ALREADY_FINALIZED"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	// Search
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeInvalidFilterFormat           ErrorCode = "INVALID_FILTER_FORMAT"

	// Assistant
	ErrCodeAssistantTimeout ErrorCode = "ASSISTANT_TIMEOUT"
	ErrCodeAssistantFailed  ErrorCode = "ASSISTANT_FAILED"

	// Broker
	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerTimeout     ErrorCode = "BROKER_TIMEOUT"
	ErrCodeBrokerRejected    ErrorCode = "BROKER_REJECTED"

	// Input
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// Ranking
// ==========================

func NewInvalidWeightConfigurationError(err error) *StandardError {
	return newError(ErrCodeInvalidWeightConfiguration, "Ranking weights cannot produce a finite score", err.Error(), false, err)
}

func NewEmptyPreferenceSetError(err error) *StandardError {
	return newError(ErrCodeEmptyPreferenceSet, "Investor preference has no sectors", err.Error(), false, err)
}

func NewPreferenceNotFoundError(preferenceID string) *StandardError {
	return newError(ErrCodePreferenceNotFound, "Investor preference not found", fmt.Sprintf("preferenceId: %s", preferenceID), false, nil)
}

// ==========================
// Applications
// ==========================

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Application not found", fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

func NewApplicationValidationFailedError(details string) *StandardError {
	return newError(ErrCodeApplicationValidationFailed, "Application data validation failed", details, false, nil)
}

func NewApplicationFinalizedError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationFinalized, "Application is finalized and can no longer change", fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

func NewDuplicateApplicationError(applicationID string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "Application already exists", fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

// ==========================
// Bids
// ==========================

func NewBidNotFoundError(bidID string) *StandardError {
	return newError(ErrCodeBidNotFound, "Bid not found", fmt.Sprintf("bidId: %s", bidID), false, nil)
}

func NewBidValidationFailedError(details string) *StandardError {
	return newError(ErrCodeBidValidationFailed, "Bid validation failed", details, false, nil)
}

func NewBidAlreadyFinalizedError(bidID string) *StandardError {
	return newError(ErrCodeBidAlreadyFinalized, "Bid is already finalized", fmt.Sprintf("bidId: %s", bidID), false, nil)
}

// ==========================
// Storage
// ==========================

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true, err)
}

// ==========================
// Search
// ==========================

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true, err)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("indexName: %s", indexName), false, nil)
}

func NewInvalidFilterFormatError(details string) *StandardError {
	return newError(ErrCodeInvalidFilterFormat, "Invalid filter format", details, false, nil)
}

// ==========================
// Assistant
// ==========================

func NewAssistantTimeoutError() *StandardError {
	return newError(ErrCodeAssistantTimeout, "Assistant API timeout", "call exceeded timeout threshold", true, nil)
}

func NewAssistantFailedError(err error) *StandardError {
	return newError(ErrCodeAssistantFailed, "Assistant API error", err.Error(), true, err)
}

// ==========================
// Broker
// ==========================

func NewBrokerUnavailableError(err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Zeebe broker unavailable", err.Error(), true, err)
}

func NewBrokerTimeoutError(err error) *StandardError {
	return newError(ErrCodeBrokerTimeout, "Zeebe request timed out", err.Error(), true, err)
}

func NewBrokerRejectedError(err error) *StandardError {
	return newError(ErrCodeBrokerRejected, "Zeebe rejected the command", err.Error(), false, err)
}

// ==========================
// Input
// ==========================

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false, err)
}

func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job variables failed schema validation", details, false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidWeightConfiguration:    "INVALID_WEIGHT_CONFIGURATION",
	ErrCodeEmptyPreferenceSet:            "EMPTY_PREFERENCE_SET",
	ErrCodePreferenceNotFound:            "PREFERENCE_NOT_FOUND",
	ErrCodeApplicationNotFound:           "APPLICATION_NOT_FOUND",
	ErrCodeApplicationValidationFailed:   "APPLICATION_VALIDATION_FAILED",
	ErrCodeApplicationFinalized:          "APPLICATION_FINALIZED",
	ErrCodeDuplicateApplication:          "DUPLICATE_APPLICATION",
	ErrCodeBidNotFound:                   "BID_NOT_FOUND",
	ErrCodeBidValidationFailed:           "BID_VALIDATION_FAILED",
	ErrCodeBidAlreadyFinalized:           "BID_ALREADY_FINALIZED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeInvalidFilterFormat:           "INVALID_FILTER_FORMAT",
	ErrCodeAssistantTimeout:              "ASSISTANT_TIMEOUT",
	ErrCodeAssistantFailed:               "ASSISTANT_FAILED",
	ErrCodeBrokerUnavailable:             "BROKER_UNAVAILABLE",
	ErrCodeBrokerTimeout:                 "BROKER_TIMEOUT",
	ErrCodeBrokerRejected:                "BROKER_REJECTED",
	ErrCodeParseError:                    "PARSE_ERROR",
	ErrCodeInputValidationFailed:         "INPUT_VALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeAssistantFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeBrokerTimeout:
		return 2

	case ErrCodeAssistantTimeout:
		return 1

	default:
		// Business errors are deterministic; retrying changes nothing.
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "WEIGHT") || strings.Contains(codeStr, "PREFERENCE"):
		return "RANKING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "BROKER"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "ASSISTANT"):
		return "AI"
	case strings.Contains(codeStr, "BID"):
		return "BIDDING"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "APPLICATION"):
		return "APPLICATION"
	default:
		return "OTHER"
	}
}
