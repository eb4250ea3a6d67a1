// internal/workers/automation/dispatch-automation/handler.go
package dispatchautomation

import (
	"context"
	"fmt"
	"time"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/common/observability"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "automation-dispatch"
)

// Runner fires an event through the automation rules.
type Runner interface {
	Run(ctx context.Context, ev dispatch.Event) (*dispatch.RunResult, error)
}

type Handler struct {
	config     *Config
	runner     Runner
	activity   *registry.Activity
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger
}

func NewHandler(config *Config, runner Runner, reg *registry.ActivityRegistry, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", TaskType, err)
	}
	act, ok := reg.Find(TaskType)
	if !ok {
		return nil, fmt.Errorf("activity %q missing from registry", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		runner:     runner,
		activity:   act,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
		logger:     log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job.Variables)
	if err != nil {
		h.obs.RecordJob(ctx, time.Since(start), "error")
		if code := errors.CodeOf(err); !h.activity.DeclaresError(string(code)) {
			h.logger.Warn("error code not declared in registry", map[string]interface{}{"errorCode": string(code)})
		}
		h.errHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.obs.RecordJob(ctx, time.Since(start), "error")
		h.errHandler.HandleJobError(ctx, client, job, errors.NewInternalError(err))
		return nil
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.obs.RecordJob(ctx, time.Since(start), "error")
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}

	h.obs.RecordJob(ctx, time.Since(start), "completed")
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"dispatched": output.Dispatched,
		"skipped":    output.Skipped,
		"failed":     output.Failed,
	})
	return nil
}

func (h *Handler) process(ctx context.Context, variables string) (*Output, error) {
	input, err := parseInput(h.activity.InputSchema, variables)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

// Execute runs the event without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.runner.Run(ctx, input.Event(h.config.DefaultOperator))
	if err != nil {
		return nil, err
	}
	for _, out := range res.Outcomes {
		h.obs.RecordRuleOutcome(ctx, string(res.Trigger), out.Status)
	}
	return outputFrom(res), nil
}
