// internal/workers/automation/dispatch-automation/config.go
package dispatchautomation

import (
	"fmt"
	"time"

	"recruit-automation/internal/common/config"
	"recruit-automation/internal/models"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	// DefaultOperator signs messages for jobs that carry no operator.
	DefaultOperator models.OperatorProfile
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

// FromWorkerConfig reads the workers.automation-dispatch section.
func FromWorkerConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
		DefaultOperator: models.OperatorProfile{
			Name:  cfg.Automation.DefaultSender.Name,
			Email: cfg.Automation.DefaultSender.Email,
			Phone: cfg.Automation.DefaultSender.Phone,
		},
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
