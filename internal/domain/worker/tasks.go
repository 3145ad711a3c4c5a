package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/bytedance/sonic"
)

// Built-in task names
const (
	TaskPing      = "ping"
	TaskFibonacci = "fibonacci"
	TaskHash      = "hash"
	TaskScript    = "script"
	TaskStats     = "stats"
)

// MaxFibonacci bounds the fibonacci task input
const MaxFibonacci = 40

// Handler runs one task. The returned value is encoded as the response result.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Tasks maps task names to handlers
type Tasks map[string]Handler

// Names returns the registered task names
func (t Tasks) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}

// BuiltinTasks returns the ping, fibonacci, hash, stats and script tasks.
// scriptTimeout bounds each script run.
func BuiltinTasks(scriptTimeout time.Duration) Tasks {
	hasher := utils.DefaultHasher()
	return Tasks{
		TaskPing:      Ping,
		TaskFibonacci: Fibonacci,
		TaskHash:      HashWith(hasher),
		TaskStats:     Stats,
		TaskScript:    NewScriptRunner(ScriptConfig{Timeout: scriptTimeout, EnableConsole: true}).Handle,
	}
}

// Ping echoes its payload
func Ping(_ context.Context, payload json.RawMessage) (any, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

// Fibonacci computes the nth Fibonacci number with n clamped to [0, MaxFibonacci].
// The payload may be a number or a numeric string.
func Fibonacci(_ context.Context, payload json.RawMessage) (any, error) {
	n, err := decodeNumber(payload)
	if err != nil {
		return nil, fmt.Errorf("fibonacci: %w", err)
	}

	n = max(0, min(MaxFibonacci, n))

	var a, b int64 = 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a, nil
}

// HashWith returns a handler digesting the UTF-8 payload. A JSON string
// payload is hashed by its contents, anything else by its JSON text.
func HashWith(hasher *utils.Hasher) Handler {
	return func(_ context.Context, payload json.RawMessage) (any, error) {
		var text string
		if err := sonic.Unmarshal(payload, &text); err != nil {
			text = string(payload)
		}
		return hasher.HashString(text), nil
	}
}

func decodeNumber(payload json.RawMessage) (int, error) {
	if len(payload) == 0 {
		return 0, nil
	}

	var v any
	if err := sonic.Unmarshal(payload, &v); err != nil {
		return 0, fmt.Errorf("invalid payload: %w", err)
	}

	var f float64
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}

	if math.IsNaN(f) {
		return 0, fmt.Errorf("expected a number, got NaN")
	}
	// Clamp before converting so huge inputs cannot overflow int
	f = math.Max(-1, math.Min(MaxFibonacci+1, f))
	return int(f), nil
}
