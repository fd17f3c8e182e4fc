package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Dump(t *testing.T) {
	s := Seed{Phrase: `quote "and" words`, Birthday: 419200}
	assert.Equal(t, `{"seed":"quote \"and\" words","birthday":419200}`, s.Dump())
}

func TestLifecycleError(t *testing.T) {
	cause := errors.New("server unreachable")
	err := fmt.Errorf("wrapped: %w", NewLifecycleError(OpLoad, StageConfig, cause))

	var le *LifecycleError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, OpLoad, le.Op)
	assert.Equal(t, StageConfig, le.Stage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "server unreachable", le.Error())
}

func TestFlattenError(t *testing.T) {
	assert.Equal(t, "Error: Light Client is not initialized", FlattenError(ErrNotInitialized))
	assert.Equal(t, "Error: boom", FlattenError(NewLifecycleError(OpCreate, StageSeed, errors.New("boom"))))
}

func TestIsErrorResponse(t *testing.T) {
	tests := []struct {
		resp string
		want bool
	}{
		{"Error: nope", true},
		{"OK", false},
		{`{"result":"error","error":"x"}`, false},
		{"error: lower case", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsErrorResponse(tt.resp), tt.resp)
	}
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, StateCreated, StateFor(OpCreate))
	assert.Equal(t, StateRestored, StateFor(OpRestore))
	assert.Equal(t, StateLoaded, StateFor(OpLoad))
	assert.Equal(t, StateAbsent, StateFor(OpDispatch))
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "unknown", State(42).String())
}
