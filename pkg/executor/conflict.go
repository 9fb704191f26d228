package executor

import (
	"context"

	"github.com/arthur-debert/punktf/pkg/types"
)

// Conflict describes an existing target that a dotfile with merge
// strategy ask would replace.
type Conflict struct {
	Source  string
	Target  string
	Dotfile types.Dotfile
}

// ConflictResolver decides what to do about a Conflict. Implementations
// may block, for example to prompt the user.
type ConflictResolver interface {
	ResolveConflict(ctx context.Context, c Conflict) (types.MergeAction, error)
}

// ConflictResolverFunc adapts a function to ConflictResolver.
type ConflictResolverFunc func(ctx context.Context, c Conflict) (types.MergeAction, error)

// ResolveConflict calls f.
func (f ConflictResolverFunc) ResolveConflict(ctx context.Context, c Conflict) (types.MergeAction, error) {
	return f(ctx, c)
}

// Always returns a resolver that answers every conflict with action.
func Always(action types.MergeAction) ConflictResolver {
	return ConflictResolverFunc(func(context.Context, Conflict) (types.MergeAction, error) {
		return action, nil
	})
}
