package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/internal/testutil"
)

func TestCallbackManager_ExecutesInOrderAndStopsOnError(t *testing.T) {
	cm := NewCallbackManager()
	var order []int
	boom := errors.New("stop")

	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeCommand, func(context.Context, *CallbackContext) error {
		order = append(order, 1)
		return nil
	}))
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeCommand, func(context.Context, *CallbackContext) error {
		order = append(order, 2)
		return boom
	}))
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforeCommand, func(context.Context, *CallbackContext) error {
		order = append(order, 3)
		return nil
	}))

	err := cm.ExecuteCallbacks(context.Background(), CallbackBeforeCommand, &CallbackContext{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, order)

	assert.NoError(t, cm.ExecuteCallbacks(context.Background(), CallbackOnInstall, &CallbackContext{}))
}

func TestEngine_CommandCallbacks(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var seen []string

	record := func(_ context.Context, cc *CallbackContext) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cc.Command+"="+cc.Response)
		return nil
	}

	cm := NewCallbackManager()
	cm.RegisterCallback(NewFunctionCallback(CallbackAfterCommand, record))

	eng := New(func(o *Options) {
		o.Factory = testutil.NewFakeFactory()
		o.Resolver = testutil.NewFakeResolver(1)
		o.Callbacks = cm
	})
	require.NoError(t, eng.InitializeExisting(ctx, false, "srv"))

	_, err := eng.Execute(ctx, "height", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"height=srv|height"}, seen)
}

func TestEngine_CommandFilterRejects(t *testing.T) {
	ctx := context.Background()
	cm := NewCallbackManager()
	cm.RegisterCallback(NewCommandFilterCallback(func(cmd string) bool { return cmd != "seed" }))

	var failures []error
	cm.RegisterCallback(NewFunctionCallback(CallbackOnError, func(_ context.Context, cc *CallbackContext) error {
		failures = append(failures, cc.Err)
		return nil
	}))

	factory := testutil.NewFakeFactory()
	eng := New(func(o *Options) {
		o.Factory = factory
		o.Resolver = testutil.NewFakeResolver(1)
		o.Callbacks = cm
	})
	require.NoError(t, eng.InitializeExisting(ctx, false, "srv"))

	_, err := eng.Execute(ctx, "seed", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"seed" is not allowed`)
	assert.Empty(t, factory.Engines()[0].Calls())
	require.Len(t, failures, 1)

	_, err = eng.Execute(ctx, "balance", "")
	assert.NoError(t, err)
}

func TestEngine_InstallAndErrorCallbacks(t *testing.T) {
	ctx := context.Background()
	cm := NewCallbackManager()

	var installs []core.State
	cm.RegisterCallback(NewFunctionCallback(CallbackOnInstall, func(_ context.Context, cc *CallbackContext) error {
		installs = append(installs, cc.State)
		return errors.New("ignored")
	}))
	var ops []core.Operation
	cm.RegisterCallback(NewFunctionCallback(CallbackOnError, func(_ context.Context, cc *CallbackContext) error {
		ops = append(ops, cc.Operation)
		return nil
	}))

	factory := testutil.NewFakeFactory()
	eng := New(func(o *Options) {
		o.Factory = factory
		o.Resolver = testutil.NewFakeResolver(1)
		o.Callbacks = cm
	})

	require.NoError(t, eng.InitializeFromPhrase(ctx, false, "srv", "words", 1))
	factory.Err = errors.New("nope")
	require.Error(t, eng.InitializeExisting(ctx, false, "srv"))

	assert.Equal(t, []core.State{core.StateRestored}, installs)
	assert.Equal(t, []core.Operation{core.OpLoad}, ops)
}

func TestLoggingCallback_OmitsResponse(t *testing.T) {
	var lines []string
	cb := NewLoggingCallback(CallbackAfterCommand, func(msg string) { lines = append(lines, msg) })

	err := cb.Execute(context.Background(), &CallbackContext{
		Operation: core.OpDispatch,
		HandleID:  "h1",
		Command:   "seed",
		Response:  `{"seed":"very secret words"}`,
	})
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "command=seed")
	assert.NotContains(t, lines[0], "secret")
}
