package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// DefaultJobRetries caps the retries handed back to the broker for retryable failures.
const DefaultJobRetries = 3

// BPMNError is the shape thrown back to the workflow engine.
type BPMNError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Category  string `json:"category"`
	Retryable bool   `json:"retryable"`
}

func (e *BPMNError) Error() string {
	return "BPMNError[" + e.Code + "]: " + e.Message
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	return map[string]interface{}{
		"errorCode":     e.Code,
		"errorMessage":  e.Message,
		"errorDetails":  e.Details,
		"errorCategory": e.Category,
		"retryable":     e.Retryable,
	}
}

// ConvertToBPMNError converts a StandardError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Category:  GetErrorCategory(stdErr.Code),
		Retryable: stdErr.Retryable && IsRetryableErrorCode(stdErr.Code),
	}
}

// JobLogger is the subset of logger.Logger the handler needs.
type JobLogger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler fails or throws jobs depending on the error category.
type ErrorHandler struct {
	logger JobLogger
}

func NewErrorHandler(logger JobLogger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails retryable collaborator errors with remaining retries,
// and throws everything else as a BPMN error so the process can branch on it.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr, ok := As(err)
	if !ok {
		stdErr = NewInternalError(err)
	}
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        bpmnErr.Code,
		"errorCategory":    bpmnErr.Category,
		"details":          bpmnErr.Details,
		"retryable":        bpmnErr.Retryable,
		"workflowInstance": job.ProcessInstanceKey,
	})

	vars, _ := json.Marshal(bpmnErr.ToErrorVariables())

	if bpmnErr.Retryable && job.Retries > 0 {
		retries := job.Retries - 1
		if retries > DefaultJobRetries {
			retries = DefaultJobRetries
		}
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(bpmnErr.Message)
		if withVars, vErr := cmd.VariablesFromString(string(vars)); vErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)
	if withVars, vErr := cmd.VariablesFromString(string(vars)); vErr == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}
