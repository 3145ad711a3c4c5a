package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
)

// DefaultScriptTimeout bounds a script run when none is configured
const DefaultScriptTimeout = 2 * time.Second

// ScriptConfig controls the script task
type ScriptConfig struct {
	Timeout       time.Duration
	EnableConsole bool
}

// ScriptRequest is the script task payload. A bare JSON string is treated
// as Code.
type ScriptRequest struct {
	Code  string          `json:"code"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ScriptResult is what the script task returns
type ScriptResult struct {
	Value   any      `json:"value"`
	Console []string `json:"console,omitempty"`
}

// ScriptRunner evaluates JavaScript for the worker console. Each run gets a
// fresh VM with module globals removed and timers disabled.
type ScriptRunner struct {
	config ScriptConfig
}

// NewScriptRunner creates a runner
func NewScriptRunner(config ScriptConfig) *ScriptRunner {
	if config.Timeout <= 0 {
		config.Timeout = DefaultScriptTimeout
	}
	return &ScriptRunner{config: config}
}

// Handle is the Handler for the script task
func (r *ScriptRunner) Handle(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decodeScript(payload)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, req)
}

// Run evaluates req.Code. The script sees req.Input as the global `input`.
// It is interrupted when the timeout passes or ctx ends.
func (r *ScriptRunner) Run(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)

	var (
		consoleMu sync.Mutex
		console   []string
	)
	r.setupGlobals(vm, func(level, msg string) {
		consoleMu.Lock()
		console = append(console, fmt.Sprintf("[%s] %s", level, msg))
		consoleMu.Unlock()
	})

	if len(req.Input) > 0 {
		var input any
		if err := sonic.Unmarshal(req.Input, &input); err != nil {
			return nil, fmt.Errorf("script: invalid input: %w", err)
		}
		if err := vm.Set("input", input); err != nil {
			return nil, fmt.Errorf("script: failed to set input: %w", err)
		}
	}

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	finished := make(chan struct{})
	defer close(finished)

	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-finished:
		}
	}()

	val, err := vm.RunString(req.Code)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	consoleMu.Lock()
	defer consoleMu.Unlock()

	return &ScriptResult{
		Value:   exportValue(val),
		Console: console,
	}, nil
}

func (r *ScriptRunner) setupGlobals(vm *goja.Runtime, logf func(level, msg string)) {
	for _, name := range []string{"require", "process", "module", "exports"} {
		_ = vm.Set(name, goja.Undefined())
	}

	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	_ = vm.Set("setTimeout", noop)
	_ = vm.Set("setInterval", noop)

	if !r.config.EnableConsole {
		return
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			logf(level, strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	_ = vm.Set("console", console)
}

func decodeScript(payload json.RawMessage) (ScriptRequest, error) {
	var code string
	if err := sonic.Unmarshal(payload, &code); err == nil {
		return ScriptRequest{Code: code}, nil
	}

	var req ScriptRequest
	if err := sonic.Unmarshal(payload, &req); err != nil {
		return ScriptRequest{}, fmt.Errorf("script: payload must be code or {code, input}")
	}
	if strings.TrimSpace(req.Code) == "" {
		return ScriptRequest{}, fmt.Errorf("script: code is required")
	}
	return req, nil
}

func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
