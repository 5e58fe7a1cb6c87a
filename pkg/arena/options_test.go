package arena

import (
	"testing"
	"time"
)

func TestStartOptionsFromParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		want   StartOptions
	}{
		{
			name:   "empty",
			params: map[string]interface{}{},
			want:   StartOptions{},
		},
		{
			name:   "json numbers",
			params: map[string]interface{}{"max_rounds": 3.0, "round_time": 30.0, "think_timeout": 0.2},
			want:   StartOptions{MaxRounds: 3, RoundTime: 30 * time.Second, ThinkTimeout: 200 * time.Millisecond},
		},
		{
			name:   "strings",
			params: map[string]interface{}{"max_rounds": "4", "round_time": " 10 "},
			want:   StartOptions{MaxRounds: 4, RoundTime: 10 * time.Second},
		},
		{
			name:   "fractions truncate",
			params: map[string]interface{}{"max_rounds": 2.7},
			want:   StartOptions{MaxRounds: 2},
		},
		{
			name:   "invalid values ignored independently",
			params: map[string]interface{}{"max_rounds": "many", "round_time": -5, "think_timeout": 0.1},
			want:   StartOptions{ThinkTimeout: 100 * time.Millisecond},
		},
		{
			name:   "zero and wrong types ignored",
			params: map[string]interface{}{"max_rounds": 0, "round_time": true, "think_timeout": "slow"},
			want:   StartOptions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartOptionsFromParams(tt.params); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestStartOptionsApply(t *testing.T) {
	s := DefaultSettings()
	StartOptions{MaxRounds: 2}.apply(&s)

	if s.MaxRounds != 2 {
		t.Errorf("Expected max rounds 2, got %d", s.MaxRounds)
	}
	if s.RoundTime != DefaultSettings().RoundTime || s.ThinkTimeout != DefaultSettings().ThinkTimeout {
		t.Errorf("Expected other settings untouched, got %+v", s)
	}
}
