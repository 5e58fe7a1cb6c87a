package config

// Parameter defines a configurable battle parameter
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// BattleParameters returns the parameters asked for before a headless
// battle, defaulting to the current configuration. The names match the keys
// understood by MergeWithCLIOverrides.
func (c *Config) BattleParameters() []Parameter {
	return []Parameter{
		{
			Name:        "max_rounds",
			Type:        "integer",
			Description: "Number of rounds",
			Default:     c.Match.MaxRounds,
			Required:    true,
			Min:         1,
			Max:         1000,
		},
		{
			Name:        "round_time",
			Type:        "duration",
			Description: "Round time limit",
			Default:     c.Match.RoundTime,
			Required:    true,
		},
		{
			Name:        "think_timeout",
			Type:        "duration",
			Description: "Time each brain gets to think per tick",
			Default:     c.Match.ThinkTimeout,
			Required:    true,
		},
		{
			Name:        "tick_rate",
			Type:        "integer",
			Description: "Ticks per second",
			Default:     c.Match.TickRate,
			Min:         1,
			Max:         1000,
		},
	}
}
