package remote

import (
	"context"

	"github.com/planloop/planloop/internal/repositories/users"
)

// LocalCollaborators resolves a user's collaborators from the locally stored
// friend links.
type LocalCollaborators struct {
	users users.Repository
}

func NewLocalCollaborators(r users.Repository) *LocalCollaborators {
	return &LocalCollaborators{users: r}
}

func (c *LocalCollaborators) CollaboratorIDs(ctx context.Context, userID string) ([]string, error) {
	u, err := c.users.GetByUID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.FriendIDs(), nil
}
