package utils

import (
	"reflect"
	"testing"
	"time"

	"github.com/picogrid/tank-arena/pkg/config"
)

func TestPromptForParametersNonInteractive(t *testing.T) {
	t.Setenv(SkipPromptsEnv, "true")
	t.Setenv("ARENA_PARAM_MAX_ROUNDS", "4")
	t.Setenv("ARENA_PARAM_ROUND_TIME", "15s")

	params := config.GetDefaultConfig().BattleParameters()
	values, err := PromptForParameters(params)
	if err != nil {
		t.Fatalf("PromptForParameters failed: %v", err)
	}

	if values["max_rounds"] != 4 {
		t.Errorf("Expected max_rounds 4 from the environment, got %v", values["max_rounds"])
	}
	if values["round_time"] != 15*time.Second {
		t.Errorf("Expected round_time 15s from the environment, got %v", values["round_time"])
	}
	if values["think_timeout"] != 50*time.Millisecond {
		t.Errorf("Expected default think_timeout, got %v", values["think_timeout"])
	}
}

func TestPromptForParametersInvalidEnv(t *testing.T) {
	t.Setenv(SkipPromptsEnv, "true")
	t.Setenv("ARENA_PARAM_TICK_RATE", "fast")

	if _, err := PromptForParameters(config.GetDefaultConfig().BattleParameters()); err == nil {
		t.Error("Expected an error for a malformed environment value")
	}
}

func TestPromptForParametersRequiredWithoutDefault(t *testing.T) {
	t.Setenv(SkipPromptsEnv, "true")

	params := []config.Parameter{{Name: "arena_name", Type: "string", Required: true}}
	if _, err := PromptForParameters(params); err == nil {
		t.Error("Expected an error for a required parameter without a value")
	}

	params[0].Required = false
	values, err := PromptForParameters(params)
	if err != nil {
		t.Fatalf("Expected optional parameter to be skipped, got %v", err)
	}
	if _, ok := values["arena_name"]; ok {
		t.Error("Expected no value for an optional parameter without a default")
	}
}

func TestConfirmNonInteractive(t *testing.T) {
	t.Setenv(SkipPromptsEnv, "true")

	for _, def := range []bool{true, false} {
		got, err := Confirm("Proceed?", def)
		if err != nil || got != def {
			t.Errorf("Expected %v, got %v (%v)", def, got, err)
		}
	}
}

func TestCheckRange(t *testing.T) {
	param := config.Parameter{Min: 1, Max: 10}
	if err := checkRange(0, param); err == nil {
		t.Error("Expected below-min error")
	}
	if err := checkRange(11, param); err == nil {
		t.Error("Expected above-max error")
	}
	if err := checkRange(5, param); err != nil {
		t.Errorf("Expected in-range value to pass, got %v", err)
	}
}

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []RosterEntry
		wantErr bool
	}{
		{
			name:  "named and bare",
			specs: []string{"Rex=chaser", "coward", " Ace = aggressive "},
			want: []RosterEntry{
				{Name: "Rex", Strategy: "chaser"},
				{Name: "", Strategy: "coward"},
				{Name: "Ace", Strategy: "aggressive"},
			},
		},
		{
			name:  "blank specs skipped",
			specs: []string{"", "  ", "sitter"},
			want:  []RosterEntry{{Strategy: "sitter"}},
		},
		{
			name:    "missing strategy",
			specs:   []string{"Rex="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoster(tt.specs)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoster failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
