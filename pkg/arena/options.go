package arena

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// StartOptions override match settings for a start. Non-positive fields
// leave the current setting unchanged.
type StartOptions struct {
	MaxRounds    int
	RoundTime    time.Duration
	ThinkTimeout time.Duration
}

// StartOptionsFromParams reads overrides from a loosely typed parameter map
// such as a decoded JSON body. max_rounds and round_time (seconds) must be
// positive integers; think_timeout (seconds) may be fractional. Invalid
// values are ignored individually.
func StartOptionsFromParams(params map[string]interface{}) StartOptions {
	var opts StartOptions

	if n, ok := toInt(params["max_rounds"]); ok && n > 0 {
		opts.MaxRounds = n
	}
	if n, ok := toInt(params["round_time"]); ok && n > 0 {
		opts.RoundTime = time.Duration(n) * time.Second
	}
	if f, ok := toFloat(params["think_timeout"]); ok && f > 0 && !math.IsInf(f, 0) {
		opts.ThinkTimeout = time.Duration(f * float64(time.Second))
	}

	return opts
}

// apply merges the overrides into s
func (o StartOptions) apply(s *Settings) {
	if o.MaxRounds > 0 {
		s.MaxRounds = o.MaxRounds
	}
	if o.RoundTime > 0 {
		s.RoundTime = o.RoundTime
	}
	if o.ThinkTimeout > 0 {
		s.ThinkTimeout = o.ThinkTimeout
	}
}

// toInt truncates numbers and parses integer strings
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}
