package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// DefaultLoadTimeout bounds the top-level evaluation of a script
const DefaultLoadTimeout = time.Second

var (
	// ErrNoThink is returned for scripts that do not define think(state)
	ErrNoThink = errors.New("script must define a think(state) function")
	// errInterrupted is the value handed to the VM when a deadline fires
	errInterrupted = errors.New("script interrupted")
)

// Script is a decision provider backed by a JavaScript program. Each Script
// owns one VM; calls are serialized because a goja runtime is not safe for
// concurrent use.
type Script struct {
	name  string
	vm    *goja.Runtime
	think goja.Callable
	sem   chan struct{}
	log   logger.Logger
}

// NewScript compiles and evaluates source, which must define a global
// think(state) function. Evaluation is bounded by loadTimeout.
func NewScript(name, source string, loadTimeout time.Duration) (*Script, error) {
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	s := &Script{
		name: name,
		vm:   goja.New(),
		sem:  make(chan struct{}, 1),
		log:  logger.WithPrefix("script").WithField("tank", name),
	}
	s.installGlobals()

	fired := make(chan struct{})
	timer := time.AfterFunc(loadTimeout, func() {
		s.vm.Interrupt(errInterrupted)
		close(fired)
	})
	_, err = s.vm.RunProgram(program)
	if !timer.Stop() {
		<-fired
	}
	s.vm.ClearInterrupt()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	think, ok := goja.AssertFunction(s.vm.Get("think"))
	if !ok {
		return nil, ErrNoThink
	}
	s.think = think
	return s, nil
}

// installGlobals exposes a small logging surface to scripts
func (s *Script) installGlobals() {
	logFn := func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.Export()
		}
		s.log.Debug(args...)
		return goja.Undefined()
	}
	console := s.vm.NewObject()
	_ = console.Set("log", logFn)
	_ = s.vm.Set("console", console)
	_ = s.vm.Set("print", logFn)
}

// Name returns the script name
func (s *Script) Name() string {
	return s.name
}

// Think implements arena.Brain. The VM is interrupted when ctx is done.
func (s *Script) Think(ctx context.Context, snap arena.Snapshot) (*arena.Action, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()

	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		s.vm.Interrupt(errInterrupted)
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
		}
		s.vm.ClearInterrupt()
	}()

	result, err := s.think(goja.Undefined(), s.vm.ToValue(snap.Map()))
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, arena.ErrThinkTimeout
		}
		return nil, fmt.Errorf("script error: %w", err)
	}
	return toAction(result)
}

// toAction converts a script return value
func toAction(v goja.Value) (*arena.Action, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	raw, ok := v.Export().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("think must return an object, got %s", v.String())
	}
	return arena.ParseAction(raw), nil
}
