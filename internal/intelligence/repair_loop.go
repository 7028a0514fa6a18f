package intelligence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alexanderramin/dealnotes/internal/llm"
)

// LoopState is a state of the render -> infer -> validate -> repair machine.
type LoopState string

const (
	LoopBuilding   LoopState = "building"
	LoopInferring  LoopState = "inferring"
	LoopValidating LoopState = "validating"
	LoopRepairing  LoopState = "repairing"
	LoopDone       LoopState = "done"
	LoopFailed     LoopState = "failed"
)

// Transition records one state change of a loop run.
type Transition struct {
	From    LoopState
	To      LoopState
	Attempt int
	Note    string
}

// RunTrace is the ordered list of transitions taken by one loop run.
type RunTrace struct {
	Task        Task
	Transitions []Transition
	Attempts    int
	Repairs     int
	Duration    time.Duration
}

// Final returns the state the run ended in.
func (t RunTrace) Final() LoopState {
	if len(t.Transitions) == 0 {
		return LoopBuilding
	}
	return t.Transitions[len(t.Transitions)-1].To
}

// States returns the visited states in order, starting with LoopBuilding.
func (t RunTrace) States() []LoopState {
	out := []LoopState{LoopBuilding}
	for _, tr := range t.Transitions {
		out = append(out, tr.To)
	}
	return out
}

// LoopError is the terminal failure of a loop run. Cause is either the
// gateway error or the last validation error.
type LoopError struct {
	Task     Task
	Attempts int
	Problems []string
	Cause    error
}

func (e *LoopError) Error() string {
	return string(e.Task) + ": " + e.Cause.Error()
}

func (e *LoopError) Unwrap() error { return e.Cause }

// ParseFunc turns raw model output into a validated value. Returning a
// *ValidationError or an llm.ErrInvalidOutput error makes the loop repair.
type ParseFunc[T any] func(raw string) (T, error)

// RepairLoop runs one prompt through the gateway, validating each answer and
// re-prompting with the validation problems at most MaxRepairs times. Gateway
// errors end the run immediately: the gateway has already retried them.
type RepairLoop[T any] struct {
	Client     llm.LLMClient
	MaxRepairs int
	Logger     *slog.Logger
}

// Run executes the loop for base. A successful run returns the parsed value;
// a failed run returns a *LoopError. The trace is returned in both cases.
func (l RepairLoop[T]) Run(ctx context.Context, base Prompt, parse ParseFunc[T]) (T, RunTrace, error) {
	var zero T
	start := time.Now()
	trace := RunTrace{Task: base.Task}
	state := LoopBuilding
	move := func(to LoopState, note string) {
		trace.Transitions = append(trace.Transitions, Transition{From: state, To: to, Attempt: trace.Attempts, Note: note})
		state = to
	}
	finish := func() {
		trace.Duration = time.Since(start)
		l.logTrace(ctx, trace)
	}

	prompt := base
	for {
		trace.Attempts++
		move(LoopInferring, "")
		resp, err := l.Client.Generate(ctx, llm.GenerateRequest{
			Task:         base.Task.LLMTask(),
			SystemPrompt: prompt.System,
			UserPrompt:   prompt.User,
		})
		if err != nil {
			move(LoopFailed, err.Error())
			finish()
			return zero, trace, &LoopError{Task: base.Task, Attempts: trace.Attempts, Cause: err}
		}

		move(LoopValidating, "")
		value, err := parse(resp.Text)
		if err == nil {
			move(LoopDone, "")
			finish()
			return value, trace, nil
		}
		problems := problemsOf(err)

		if !repairable(err) || trace.Repairs >= l.MaxRepairs {
			move(LoopFailed, err.Error())
			finish()
			return zero, trace, &LoopError{Task: base.Task, Attempts: trace.Attempts, Problems: problems, Cause: err}
		}

		trace.Repairs++
		move(LoopRepairing, err.Error())
		if l.Logger != nil {
			l.Logger.DebugContext(ctx, "repair_prompt",
				"task", string(base.Task),
				"attempt", trace.Attempts,
				"raw_output", resp.Text,
			)
		}
		prompt = BuildRepair(base, resp.Text, problems)
	}
}

func (l RepairLoop[T]) logTrace(ctx context.Context, trace RunTrace) {
	if l.Logger == nil {
		return
	}
	states := make([]string, 0, len(trace.Transitions)+1)
	for _, s := range trace.States() {
		states = append(states, string(s))
	}
	l.Logger.DebugContext(ctx, "repair_loop",
		"task", string(trace.Task),
		"final", string(trace.Final()),
		"attempts", trace.Attempts,
		"repairs", trace.Repairs,
		"duration_ms", trace.Duration.Milliseconds(),
		"states", states,
	)
}

func repairable(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) || errors.Is(err, llm.ErrInvalidOutput)
}

func problemsOf(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Problems()
	}
	return []string{err.Error()}
}
