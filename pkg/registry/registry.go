// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed registry.json
var embedded []byte

// LoadRegistry reads a registry file from disk.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return parse(embedded)
}

// Load reads path when set and falls back to the compiled-in registry.
func Load(path string) (*ActivityRegistry, error) {
	if path == "" {
		return Default()
	}
	return LoadRegistry(path)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks that every activity is addressable and has an input schema.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity id: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", activity.ID)
		}
		if len(activity.InputSchema) == 0 {
			return fmt.Errorf("activity %s missing required field: inputSchema", activity.ID)
		}
		if _, err := activity.TimeoutDuration(); err != nil {
			return fmt.Errorf("activity %s has invalid timeout %q: %w", activity.ID, activity.Timeout, err)
		}
	}
	return nil
}
