// internal/workers/automation/dispatch-automation/validation.go
package dispatchautomation

import (
	"encoding/json"
	"strings"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/common/validation"
)

// parseInput checks the raw variables against the registry schema before
// decoding them.
func parseInput(schema map[string]interface{}, raw string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.NewInvalidInputError("variables are not a JSON object: " + err.Error())
	}

	result, err := validation.ValidateAgainstSchema(schema, doc)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var in Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if strings.TrimSpace(in.Trigger) == "" {
		return nil, errors.NewInvalidInputError("trigger is required")
	}
	return &in, nil
}
