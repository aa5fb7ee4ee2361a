package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func succeedingRunner(result string) RunnerFunc {
	return func(ctx RunContext) AgentReport {
		return AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: StatusCompleted, Result: result}
	}
}

func TestEngine_LinearDependency(t *testing.T) {
	agents := []AgentConfig{
		{SubtaskID: "a", ParallelGroup: "g1"},
		{SubtaskID: "b", ParallelGroup: "g2", Dependencies: []string{"a"}},
	}

	var seenOrder []string
	engine := New(RunnerFunc(func(ctx RunContext) AgentReport {
		seenOrder = append(seenOrder, ctx.Agent.SubtaskID)
		return AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: StatusCompleted, Result: "ok:" + ctx.Agent.SubtaskID}
	}))

	result := engine.Run(agents, nil)

	require.Equal(t, OutcomeCompletedSuccessfully, result.Outcome)
	require.Equal(t, []string{"a", "b"}, seenOrder)
	require.Equal(t, "ok:b", result.Reports["b"].Result)
}

func TestEngine_ParallelGroupRunsConcurrently(t *testing.T) {
	agents := []AgentConfig{
		{SubtaskID: "a", ParallelGroup: "g1"},
		{SubtaskID: "b", ParallelGroup: "g1"},
	}

	engine := New(succeedingRunner("done"))
	result := engine.Run(agents, nil)

	require.Equal(t, OutcomeCompletedSuccessfully, result.Outcome)
	require.Len(t, result.Reports, 2)
	require.Equal(t, StatusCompleted, result.Reports["a"].Status)
	require.Equal(t, StatusCompleted, result.Reports["b"].Status)
}

func TestEngine_DependentSeesUpstreamResult(t *testing.T) {
	agents := []AgentConfig{
		{SubtaskID: "a", ParallelGroup: "g1"},
		{SubtaskID: "b", ParallelGroup: "g2", Dependencies: []string{"a"}},
	}

	var capturedDepResult any
	engine := New(RunnerFunc(func(ctx RunContext) AgentReport {
		if ctx.Agent.SubtaskID == "b" {
			capturedDepResult = ctx.Results["a"]
		}
		return AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: StatusCompleted, Result: "result:" + ctx.Agent.SubtaskID}
	}))

	engine.Run(agents, nil)

	require.Equal(t, "result:a", capturedDepResult)
}

func TestEngine_ErrorCascadeBlocksDependents(t *testing.T) {
	agents := []AgentConfig{
		{SubtaskID: "a", ParallelGroup: "g1"},
		// An errored dependency still counts as completed, so the cascade only
		// applies once nothing is ready; the unknown "ghost" keeps b unready.
		{SubtaskID: "b", ParallelGroup: "g2", Dependencies: []string{"a", "ghost"}},
	}

	engine := New(RunnerFunc(func(ctx RunContext) AgentReport {
		return AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: StatusError, Error: "boom"}
	}))

	result := engine.Run(agents, nil)

	require.Equal(t, OutcomeCompletedWithErrors, result.Outcome)
	require.Equal(t, StatusBlockedErr, result.Reports["b"].Status)
}

func TestEngine_StallOnUnknownDependency(t *testing.T) {
	agents := []AgentConfig{
		{SubtaskID: "a", ParallelGroup: "g1", Dependencies: []string{"does-not-exist"}},
	}

	engine := New(succeedingRunner("unreached"))
	result := engine.Run(agents, nil)

	require.Equal(t, OutcomeCompletedWithErrors, result.Outcome)
	require.Equal(t, StatusStalled, result.Reports["a"].Status)
}

func TestEngine_PanicInRunnerBecomesErrorReport(t *testing.T) {
	agents := []AgentConfig{{SubtaskID: "a", ParallelGroup: "g1"}}

	engine := New(RunnerFunc(func(ctx RunContext) AgentReport {
		panic("agent exploded")
	}))

	result := engine.Run(agents, nil)

	require.Equal(t, OutcomeCompletedWithErrors, result.Outcome)
	require.Equal(t, StatusError, result.Reports["a"].Status)
}

func TestEngine_EmitsEventsForEveryAgent(t *testing.T) {
	agents := []AgentConfig{{SubtaskID: "a", ParallelGroup: "g1"}}

	var kinds []EventKind
	engine := New(succeedingRunner("ok"))
	engine.Run(agents, func(e Event) { kinds = append(kinds, e.Kind) })

	require.Contains(t, kinds, EventPending)
	require.Contains(t, kinds, EventReadyToExecute)
	require.Contains(t, kinds, EventInProgress)
	require.Contains(t, kinds, EventTerminal)
}
