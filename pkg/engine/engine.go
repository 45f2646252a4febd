// Package engine implements the turn-script interpreter: it walks a
// subject's enabled actions in order, gates each on its condition,
// dispatches to the injected executors, records outcomes in a per-run
// ledger and follows success/failure branches.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/conditions"
)

// DefaultStepDelay paces dispatched actions so a live audience can
// follow the turn. It is not a correctness concern.
const DefaultStepDelay = 500 * time.Millisecond

// Mover executes movement actions.
type Mover interface {
	Move(ctx context.Context, subject *actor.Subject, payload action.MovementPayload) action.Outcome
}

// Attacker executes attack, spell and reaction actions. Spells and
// reactions share the attack path.
type Attacker interface {
	Attack(ctx context.Context, subject *actor.Subject, payload action.AttackPayload) action.Outcome
}

// ItemUser executes direct item use.
type ItemUser interface {
	UseItem(ctx context.Context, subject *actor.Subject, payload action.ItemPayload) action.Outcome
}

// RangeChecker answers target_in_range conditions. When no checker is
// wired the condition evaluates true.
type RangeChecker interface {
	TargetInRange(subject *actor.Subject, act action.Action) bool
}

// Notifier receives run-level notifications. Skip notices are
// debug-grade; only summaries and errors are user-facing.
type Notifier interface {
	RunSummary(subjectID string, executed int)
	RunError(subjectID string, err error)
	ActionSkipped(subjectID string, act action.Action)
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	Executing        bool   `json:"executing"`
	SubjectID        string `json:"subject_id,omitempty"`
	ActionsCompleted int    `json:"actions_completed,omitempty"`
}

// Deps are the collaborators an Engine dispatches to. Mover and Attacker
// are required; ItemWorkflow is preferred over Items for item use when
// both are present.
type Deps struct {
	Mover        Mover
	Attacker     Attacker
	Items        ItemUser
	ItemWorkflow ItemUser
	RangeCheck   RangeChecker
	Notifier     Notifier
}

// Engine runs one turn script at a time. The single-flight guard is
// global: while any subject's run is active, triggers for every subject
// are dropped. This mirrors how a human operator drives one turn at a
// time at the table.
type Engine struct {
	deps      Deps
	stepDelay time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	active *run
}

type run struct {
	subject  *actor.Subject
	ledger   *Ledger
	stop     chan struct{}
	stopOnce sync.Once
}

func (r *run) requestStop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// New creates an Engine. A zero or negative stepDelay disables pacing.
func New(deps Deps, stepDelay time.Duration, log *slog.Logger) *Engine {
	if deps.Notifier == nil {
		deps.Notifier = noopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		deps:      deps,
		stepDelay: stepDelay,
		log:       log,
	}
}

// ExecuteQueue runs the subject's action list. It blocks until the run
// finishes, is stopped, or the context is cancelled; callers that need
// fire-and-forget semantics run it in a goroutine.
//
// If a run is already active the trigger is dropped: no queuing, no
// error, a debug log only.
func (e *Engine) ExecuteQueue(ctx context.Context, subject *actor.Subject, actions []action.Action) {
	e.mu.Lock()
	if e.active != nil {
		busy := e.active.subject.ID()
		e.mu.Unlock()
		e.log.Debug("run already active, dropping trigger",
			"subject", subject.ID(),
			"active_subject", busy,
			"reason", action.ErrConcurrentRunRejected)
		return
	}
	r := &run{
		subject: subject,
		ledger:  NewLedger(),
		stop:    make(chan struct{}),
	}
	e.active = r
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		if e.active == r {
			e.active = nil
		}
		e.mu.Unlock()
	}()

	enabled := action.SortEnabled(actions)
	e.log.Info("starting queue run",
		"subject", subject.ID(),
		"enabled_actions", len(enabled),
		"total_actions", len(actions))

	executed := 0
	for _, act := range enabled {
		if e.stopped(ctx, r) {
			e.log.Info("run stopped", "subject", subject.ID(), "executed", executed)
			return
		}

		view := subjectView{Subject: subject, engine: e, act: act}
		if !conditions.Evaluate(act.Condition, view, r.ledger) {
			e.log.Debug("condition not met, skipping action",
				"subject", subject.ID(),
				"action", act.ID,
				"type", act.Type,
				"condition", act.Condition.Kind)
			e.deps.Notifier.ActionSkipped(subject.ID(), act)
			continue
		}

		out := e.dispatch(ctx, subject, act)
		r.ledger.Record(act.ID, act.Type, out)
		executed++

		if !e.pace(ctx, r) {
			e.log.Info("run stopped", "subject", subject.ID(), "executed", executed)
			return
		}

		if branched := e.branch(ctx, r, actions, act, out); branched {
			executed++
			if !e.pace(ctx, r) {
				e.log.Info("run stopped", "subject", subject.ID(), "executed", executed)
				return
			}
		}
	}

	e.log.Info("queue run complete", "subject", subject.ID(), "executed", executed)
	e.deps.Notifier.RunSummary(subject.ID(), executed)
}

// Stop requests cooperative cancellation of the active run, if any.
// The guard and run context are cleared synchronously; a dispatch
// already in flight completes, but the run does not proceed past its
// next suspension point.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return
	}
	e.log.Info("stop requested", "subject", e.active.subject.ID())
	e.active.requestStop()
	e.active = nil
}

// Status reports whether a run is active and how many actions it has
// completed so far.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return Status{}
	}
	return Status{
		Executing:        true,
		SubjectID:        e.active.subject.ID(),
		ActionsCompleted: e.active.ledger.Size(),
	}
}

// dispatch routes one action to its executor and never lets a failure
// escape: executor panics become failed outcomes.
func (e *Engine) dispatch(ctx context.Context, subject *actor.Subject, act action.Action) (out action.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("dispatch panic recovered",
				"subject", subject.ID(),
				"action", act.ID,
				"type", act.Type,
				"panic", rec)
			out = action.Failed(action.OutcomeInfo, action.ErrExecutorPanic,
				fmt.Sprintf("dispatch failed: %v", rec))
		}
	}()

	switch act.Type {
	case action.TypeMovement:
		if act.Movement == nil {
			return action.Failed(action.OutcomeMovement, action.ErrNoValidDestination, "movement action has no payload")
		}
		return e.deps.Mover.Move(ctx, subject, *act.Movement)

	case action.TypeAttack, action.TypeSpell, action.TypeBonusAction, action.TypeReaction:
		if act.Attack == nil {
			return action.Failed(action.OutcomeAttack, action.ErrNoValidTarget, "attack action has no payload")
		}
		return e.deps.Attacker.Attack(ctx, subject, *act.Attack)

	case action.TypeItem:
		if act.Item == nil {
			return action.Failed(action.OutcomeItem, action.ErrItemNotFound, "item action has no payload")
		}
		if e.deps.ItemWorkflow != nil {
			return e.deps.ItemWorkflow.UseItem(ctx, subject, *act.Item)
		}
		if e.deps.Items != nil {
			return e.deps.Items.UseItem(ctx, subject, *act.Item)
		}
		return action.Failed(action.OutcomeItem, action.ErrItemNotFound, "no item executor available")

	case action.TypeEndTurn:
		return action.Outcome{Success: true, Kind: action.OutcomeInfo, Message: "turn ended"}

	default:
		return action.Failed(action.OutcomeInfo, action.ErrUnknownActionType,
			fmt.Sprintf("unknown action type %q", act.Type))
	}
}

// branch dispatches the success/failure branch target of a completed
// action, if one is set. The target is looked up in the full action
// list, so disabled and out-of-order actions are reachable, and its own
// condition is bypassed. Branch targets do not chain further.
func (e *Engine) branch(ctx context.Context, r *run, all []action.Action, act action.Action, out action.Outcome) bool {
	var targetID uuid.UUID
	var trigger string
	switch {
	case out.Success && act.OnSuccess != nil:
		targetID, trigger = *act.OnSuccess, "success"
	case !out.Success && act.OnFailure != nil:
		targetID, trigger = *act.OnFailure, "failure"
	default:
		return false
	}

	target, ok := action.FindByID(all, targetID)
	if !ok {
		e.log.Warn("branch target not found",
			"subject", r.subject.ID(),
			"action", act.ID,
			"branch", targetID,
			"trigger", trigger)
		return false
	}

	e.log.Debug("following branch",
		"subject", r.subject.ID(),
		"from", act.ID,
		"to", target.ID,
		"trigger", trigger)

	branchOut := e.dispatch(ctx, r.subject, target)
	r.ledger.Record(target.ID, target.Type, branchOut)
	return true
}

// pace waits out the configured step delay, returning false if the run
// was stopped or the context cancelled while waiting.
func (e *Engine) pace(ctx context.Context, r *run) bool {
	if e.stepDelay <= 0 {
		return !e.stopped(ctx, r)
	}
	timer := time.NewTimer(e.stepDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) stopped(ctx context.Context, r *run) bool {
	select {
	case <-r.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// subjectView adapts a Subject to conditions.SubjectView, answering
// target_in_range through the wired RangeChecker.
type subjectView struct {
	*actor.Subject
	engine *Engine
	act    action.Action
}

func (v subjectView) TargetInRange() bool {
	if v.engine.deps.RangeCheck == nil {
		return true
	}
	return v.engine.deps.RangeCheck.TargetInRange(v.Subject, v.act)
}

type noopNotifier struct{}

func (noopNotifier) RunSummary(string, int)              {}
func (noopNotifier) RunError(string, error)              {}
func (noopNotifier) ActionSkipped(string, action.Action) {}
