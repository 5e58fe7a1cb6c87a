package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/picogrid/tank-arena/pkg/config"
)

// SkipPromptsEnv disables all interactive prompts when set to "true"
const SkipPromptsEnv = "ARENA_SKIP_PROMPTS"

// Interactive reports whether prompts may be shown: stdin must be a terminal
// and prompts must not be disabled through the environment
func Interactive() bool {
	if os.Getenv(SkipPromptsEnv) == "true" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// envKey is the environment variable that pre-fills a parameter
func envKey(name string) string {
	return "ARENA_PARAM_" + strings.ToUpper(name)
}

// PromptForParameters asks for each parameter. Without a terminal, values
// come from ARENA_PARAM_<NAME> or the parameter default.
func PromptForParameters(params []config.Parameter) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	interactive := Interactive()

	for _, param := range params {
		value, err := resolveParameter(param, interactive)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

func resolveParameter(param config.Parameter, interactive bool) (interface{}, error) {
	if envValue := os.Getenv(envKey(param.Name)); envValue != "" {
		parsed, err := parseValue(envValue, param)
		if err != nil && !interactive {
			return nil, fmt.Errorf("invalid %s: %w", envKey(param.Name), err)
		}
		if err == nil {
			param.Default = parsed
		}
	}

	if !interactive {
		if param.Default == nil && param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
		return param.Default, nil
	}

	switch param.Type {
	case "integer":
		return promptInteger(param)
	case "float":
		return promptFloat(param)
	case "string":
		return promptString(param)
	case "boolean":
		return promptBoolean(param)
	case "duration":
		return promptDuration(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// parseValue parses a raw string according to the parameter type
func parseValue(value string, param config.Parameter) (interface{}, error) {
	switch param.Type {
	case "integer":
		return strconv.Atoi(value)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "string":
		return value, nil
	case "boolean":
		return strconv.ParseBool(value)
	case "duration":
		return time.ParseDuration(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// checkRange validates v against the parameter's optional bounds
func checkRange(v float64, param config.Parameter) error {
	if param.Min != nil && v < toFloat64(param.Min) {
		return fmt.Errorf("value must be at least %v", param.Min)
	}
	if param.Max != nil && v > toFloat64(param.Max) {
		return fmt.Errorf("value must be at most %v", param.Max)
	}
	return nil
}

func promptInteger(param config.Parameter) (int, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	var result string
	prompt := &survey.Input{Message: param.Description, Default: defaultStr}
	validate := func(val interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(val.(string)))
		if err != nil {
			return fmt.Errorf("invalid integer")
		}
		return checkRange(float64(n), param)
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(survey.Required, validate))); err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(result))
}

func promptFloat(param config.Parameter) (float64, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	var result string
	prompt := &survey.Input{Message: param.Description, Default: defaultStr}
	validate := func(val interface{}) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64)
		if err != nil {
			return fmt.Errorf("invalid number")
		}
		return checkRange(f, param)
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(survey.Required, validate))); err != nil {
		return 0, err
	}

	return strconv.ParseFloat(strings.TrimSpace(result), 64)
}

func promptString(param config.Parameter) (string, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	var result string
	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultStr,
		}
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	var opts []survey.AskOpt
	if param.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(&survey.Input{Message: param.Description, Default: defaultStr}, &result, opts...); err != nil {
		return "", err
	}
	return result, nil
}

func promptBoolean(param config.Parameter) (bool, error) {
	defaultBool := false
	switch v := param.Default.(type) {
	case bool:
		defaultBool = v
	case string:
		defaultBool = v == "true" || v == "yes" || v == "1"
	}

	var result bool
	if err := survey.AskOne(&survey.Confirm{Message: param.Description, Default: defaultBool}, &result); err != nil {
		return false, err
	}
	return result, nil
}

func promptDuration(param config.Parameter) (time.Duration, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	var result string
	prompt := &survey.Input{
		Message: param.Description + " (e.g. 50ms, 30s, 2m)",
		Default: defaultStr,
	}
	validate := func(val interface{}) error {
		d, err := time.ParseDuration(strings.TrimSpace(val.(string)))
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration (use formats like 50ms, 30s, 2m)")
		}
		return nil
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validate)); err != nil {
		return 0, err
	}

	return time.ParseDuration(strings.TrimSpace(result))
}

// Confirm asks a yes/no question. Without a terminal it returns def.
func Confirm(message string, def bool) (bool, error) {
	if !Interactive() {
		return def, nil
	}
	result := def
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &result); err != nil {
		return false, err
	}
	return result, nil
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case time.Duration:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
