// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"recruit-automation/internal/common/validation"
	"recruit-automation/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "", "Path to registry file (default: compiled-in registry)")

	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkPath := checkCmd.String("path", "", "Path to registry file (default: compiled-in registry)")
	taskType := checkCmd.String("taskType", "automation-dispatch", "Task type whose input schema is used")
	vars := checkCmd.String("vars", "", "Job variables as a JSON object")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		reg, err := registry.Load(*validatePath)
		if err != nil {
			fail("failed to load registry: %v", err)
		}
		if err := reg.Validate(); err != nil {
			fail("registry invalid: %v", err)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		if *vars == "" {
			checkCmd.Usage()
			os.Exit(1)
		}
		reg, err := registry.Load(*checkPath)
		if err != nil {
			fail("failed to load registry: %v", err)
		}
		act, ok := reg.Find(*taskType)
		if !ok {
			fail("unknown task type %q", *taskType)
		}

		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(*vars), &doc); err != nil {
			fail("vars must be a JSON object: %v", err)
		}
		res, err := validation.ValidateAgainstSchema(act.InputSchema, doc)
		if err != nil {
			fail("schema check failed: %v", err)
		}
		if !res.Valid {
			for _, msg := range res.GetErrorMessages() {
				fmt.Println("  -", msg)
			}
			os.Exit(2)
		}
		fmt.Printf("Variables are valid for %s.\n", *taskType)

	case "help":
		help()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func help() {
	fmt.Print(`
Usage: registry-check <command> [flags]

Commands:
  validate  Validate the activity registry
  check     Check job variables against a task's input schema
  help      Show this help message

Examples:
  registry-check validate
  registry-check check -vars '{"trigger":"interview_scheduled","candidateId":"c1"}'
` + "\n")
}
