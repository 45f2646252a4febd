package turns

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/engine"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// Runner is the engine surface the listener drives. Tests substitute a
// recording fake; engine.Engine satisfies it.
type Runner interface {
	ExecuteQueue(ctx context.Context, subject *actor.Subject, actions []action.Action)
}

// Notifier receives run-abort errors for failures outside dispatch
// (queue loading, subject resolution).
type Notifier interface {
	RunError(subjectID string, err error)
}

// Listener subscribes to turn events and starts queue runs for owned
// subjects. Backpressure is the engine's single-flight guard: the
// listener fires and forgets; concurrent triggers are dropped there.
type Listener struct {
	redisClient *redis.Client
	store       storage.Storage
	runner      Runner
	notifier    Notifier
	owned       map[string]bool
	sceneID     string
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a turn listener. ownedSubjects is the set of subject ids
// this process automates; events for other subjects are ignored.
func New(redisClient *redis.Client, store storage.Storage, runner Runner, notifier Notifier, ownedSubjects []string, sceneID string, log *slog.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())

	owned := make(map[string]bool, len(ownedSubjects))
	for _, id := range ownedSubjects {
		owned[id] = true
	}

	return &Listener{
		redisClient: redisClient,
		store:       store,
		runner:      runner,
		notifier:    notifier,
		owned:       owned,
		sceneID:     sceneID,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start subscribes to the turn channel and processes events until Stop
// is called. It blocks.
func (l *Listener) Start() error {
	sub := l.redisClient.Subscribe(l.ctx, Channel)
	defer func() {
		_ = sub.Close()
	}()

	// Force the subscription to be established before reporting started.
	if _, err := sub.Receive(l.ctx); err != nil {
		return fmt.Errorf("failed to subscribe to turn events: %w", err)
	}

	l.log.Info("Turn listener started", "channel", Channel, "owned_subjects", len(l.owned))

	ch := sub.Channel()
	for {
		select {
		case <-l.ctx.Done():
			l.log.Info("Turn listener shutting down")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handle(msg.Payload)
		}
	}
}

// Stop shuts the listener down.
func (l *Listener) Stop() {
	l.cancel()
}

// handle processes one turn event. All failures outside dispatch abort
// the would-be run with a single error notification; they never panic
// the listener loop.
func (l *Listener) handle(payload string) {
	event, err := FromJSON([]byte(payload))
	if err != nil {
		l.log.Warn("Ignoring malformed turn event", "error", err)
		return
	}

	if !event.IsNewTurn {
		return
	}
	if !l.owned[event.SubjectID] {
		l.log.Debug("Turn event for unowned subject, ignoring", "subject", event.SubjectID)
		return
	}

	l.log.Info("New turn for owned subject",
		"subject", event.SubjectID,
		"round", event.Round,
		"turn", event.Turn)

	subject, actions, err := l.prepare(event.SubjectID)
	if err != nil {
		l.log.Error("Failed to prepare queue run", "subject", event.SubjectID, "error", err)
		if l.notifier != nil {
			l.notifier.RunError(event.SubjectID, err)
		}
		return
	}
	if subject == nil {
		// Nothing queued for this subject, or the queue is disabled.
		return
	}

	go l.runner.ExecuteQueue(l.ctx, subject, actions)
}

// prepare snapshots the subject's queue and builds the runtime subject.
// A nil subject with nil error means there is nothing to run.
func (l *Listener) prepare(subjectID string) (*actor.Subject, []action.Action, error) {
	ctx := l.ctx

	env, err := l.store.LoadQueue(ctx, subjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load queue: %w", err)
	}
	if env == nil || !env.Enabled || len(env.Actions) == 0 {
		l.log.Debug("No enabled queue for subject", "subject", subjectID)
		return nil, nil, nil
	}

	spec, err := l.resolveSpec(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}

	subject, err := actor.NewSubjectFromSpec(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build subject: %w", err)
	}

	return subject, env.Actions, nil
}

// resolveSpec prefers the live scene combatant (current HP/position)
// over the static subject spec.
func (l *Listener) resolveSpec(ctx context.Context, subjectID string) (*actor.SubjectSpec, error) {
	if l.sceneID != "" {
		sc, err := l.store.LoadScene(ctx, l.sceneID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		if sc != nil {
			if spec, ok := sc.Combatant(subjectID); ok {
				return spec, nil
			}
		}
	}

	spec, err := l.store.GetSubjectSpec(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject spec: %w", err)
	}
	return spec, nil
}

var _ Runner = (*engine.Engine)(nil)
