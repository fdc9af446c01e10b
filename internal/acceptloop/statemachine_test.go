package acceptloop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateMachine_StartsInStarting(t *testing.T) {
	sm := newStateMachine()
	require.Equal(t, StateStarting, sm.State())
}

func TestStateMachine_ValidTransitionSequence(t *testing.T) {
	sm := newStateMachine()
	require.NoError(t, sm.transition(StateServing))
	require.NoError(t, sm.transition(StateDraining))
	require.NoError(t, sm.transition(StateStopped))
	require.Equal(t, StateStopped, sm.State())
}

func TestStateMachine_RejectsSkippingServing(t *testing.T) {
	sm := newStateMachine()
	require.Error(t, sm.transition(StateDraining))
}

func TestStateMachine_RejectsTransitionFromTerminal(t *testing.T) {
	sm := newStateMachine()
	require.NoError(t, sm.transition(StateServing))
	require.NoError(t, sm.transition(StateDraining))
	require.NoError(t, sm.transition(StateStopped))
	require.Error(t, sm.transition(StateServing))
}

func TestStateMachine_SameStateIsNoop(t *testing.T) {
	sm := newStateMachine()
	require.NoError(t, sm.transition(StateStarting))
	require.Equal(t, StateStarting, sm.State())
}

func TestStateMachine_ErrorIsRecoverableToStopped(t *testing.T) {
	sm := newStateMachine()
	require.NoError(t, sm.transition(StateServing))
	require.NoError(t, sm.transition(StateError))
	require.NoError(t, sm.transition(StateStopped))
}
