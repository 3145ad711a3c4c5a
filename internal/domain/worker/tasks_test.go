package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFibonacci(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int64
		wantErr bool
	}{
		{"zero", `0`, 0, false},
		{"one", `1`, 1, false},
		{"ten", `10`, 55, false},
		{"forty", `40`, 102334155, false},
		{"clamped high", `1000`, 102334155, false},
		{"huge", `1e300`, 102334155, false},
		{"clamped low", `-5`, 0, false},
		{"numeric string", `"10"`, 55, false},
		{"fraction truncates", `10.9`, 55, false},
		{"null", `null`, 0, false},
		{"empty", ``, 0, false},
		{"word", `"ten"`, 0, true},
		{"object", `{"n":10}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fibonacci(context.Background(), json.RawMessage(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashIsDeterministic(t *testing.T) {
	hash := HashWith(utils.DefaultHasher())
	ctx := context.Background()

	a, err := hash(ctx, json.RawMessage(`"hello"`))
	require.NoError(t, err)
	b, err := hash(ctx, json.RawMessage(`"hello"`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a)

	c, _ := hash(ctx, json.RawMessage(`{"a":1}`))
	assert.Equal(t, utils.DefaultHasher().HashString(`{"a":1}`), c)
}

func TestHashRollingFallback(t *testing.T) {
	hash := HashWith(utils.NewHasher(utils.Rolling))
	got, err := hash(context.Background(), json.RawMessage(`"a"`))
	require.NoError(t, err)
	assert.Equal(t, "00000061", got)
}

func TestPing(t *testing.T) {
	got, err := Ping(context.Background(), json.RawMessage(`{"x":true}`))
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"x":true}`), got)

	got, err = Ping(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScriptRunner(t *testing.T) {
	runner := NewScriptRunner(ScriptConfig{Timeout: time.Second, EnableConsole: true})
	ctx := context.Background()

	t.Run("bare code", func(t *testing.T) {
		res, err := runner.Handle(ctx, json.RawMessage(`"1 + 2"`))
		require.NoError(t, err)
		assert.EqualValues(t, 3, res.(*ScriptResult).Value)
	})

	t.Run("input and console", func(t *testing.T) {
		payload := json.RawMessage(`{"code":"console.log('n is', input.n); input.n * 2","input":{"n":21}}`)
		res, err := runner.Handle(ctx, payload)
		require.NoError(t, err)

		result := res.(*ScriptResult)
		assert.EqualValues(t, 42, result.Value)
		assert.Equal(t, []string{"[log] n is 21"}, result.Console)
	})

	t.Run("module globals removed", func(t *testing.T) {
		res, err := runner.Handle(ctx, json.RawMessage(`"typeof require"`))
		require.NoError(t, err)
		assert.Equal(t, "undefined", res.(*ScriptResult).Value)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := runner.Handle(ctx, json.RawMessage(`"let = ;"`))
		assert.Error(t, err)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := runner.Handle(ctx, json.RawMessage(`{"input":1}`))
		assert.Error(t, err)
	})
}

func TestScriptTimeout(t *testing.T) {
	runner := NewScriptRunner(ScriptConfig{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := runner.Handle(context.Background(), json.RawMessage(`"while (true) {}"`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timeout"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestScriptThroughPool(t *testing.T) {
	pool := NewPool(1, BuiltinTasks(time.Second))
	defer pool.Destroy()

	raw, err := pool.Run(context.Background(), TaskScript, "[1,2,3].map(x => x * x)")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":[1,4,9]}`, string(raw))
}
