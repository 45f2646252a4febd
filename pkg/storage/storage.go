package storage

import (
	"context"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/item"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

// Storage defines a unified interface for all storage operations.
// Queues and scenes are dynamic state (Redis-backed); subject and item
// specs are static resources (filesystem-backed).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Queue operations (Redis-backed). A subject owns exactly one
	// queue; LoadQueue returns nil (no error) when none is stored.
	SaveQueue(ctx context.Context, subjectID string, env *action.Envelope) error
	LoadQueue(ctx context.Context, subjectID string) (*action.Envelope, error)
	DeleteQueue(ctx context.Context, subjectID string) error

	// Scene operations (Redis-backed)
	SaveScene(ctx context.Context, sc *scene.Scene) error
	LoadScene(ctx context.Context, id string) (*scene.Scene, error)

	// Subject operations (filesystem-backed, returns the spec;
	// use actor.NewSubjectFromSpec to build the runtime Subject)
	GetSubjectSpec(ctx context.Context, subjectID string) (*actor.SubjectSpec, error)
	ListSubjects(ctx context.Context) ([]string, error)

	// Item operations (filesystem-backed)
	GetItemSpec(ctx context.Context, itemID string) (*item.Spec, error)
	ListItems(ctx context.Context) ([]string, error)
}
