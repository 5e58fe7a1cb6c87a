package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
)

// BuiltinPrefix selects a registered strategy instead of script source
const BuiltinPrefix = "builtin:"

// Compiler builds brains from registration sources
type Compiler struct {
	Registry    *Registry
	LoadTimeout time.Duration
}

// NewCompiler creates a compiler over the default registry
func NewCompiler() *Compiler {
	return &Compiler{
		Registry:    DefaultRegistry,
		LoadTimeout: DefaultLoadTimeout,
	}
}

// Compile returns a brain for source. "builtin:<name>" picks a registered
// strategy; anything else is JavaScript.
func (c *Compiler) Compile(name, source string) (arena.Brain, error) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, BuiltinPrefix) {
		strategy := strings.TrimSpace(strings.TrimPrefix(trimmed, BuiltinPrefix))
		return c.Registry.Get(strategy)
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty brain source")
	}

	if name == "" {
		name = "brain"
	}
	return NewScript(name, source, c.LoadTimeout)
}

// Compile compiles with the default compiler. It satisfies arena.Compiler.
func Compile(name, source string) (arena.Brain, error) {
	return NewCompiler().Compile(name, source)
}
