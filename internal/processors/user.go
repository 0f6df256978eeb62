package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyUser upserts one incoming user record. Friends reconcile by set
// difference against friendIds; a friend that is not locally known yet gets a
// placeholder stub so the relationship survives out-of-order delivery, to be
// hydrated when that user's own record arrives.
func (p *Pipeline) applyUser(ctx context.Context, uid string, d dto.DTO) error {
	u, err := p.svc.Users.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		u = &models.User{}
		u.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Str("name"); ok {
		u.Name = v
	}
	if v, ok := d.Str("email"); ok {
		u.Email = v
	}

	if err := p.reconcileFriends(ctx, u, d); err != nil {
		return err
	}

	u.SentInvites = parseInvites(ctx, p, d, "sentInviteIds")
	u.ReceivedInvites = parseInvites(ctx, p, d, "receivedInviteIds")

	applyBase(&u.Syncable, d)
	u.MarkSynced()

	return p.svc.Users.CreateOrUpdate(ctx, u)
}

func (p *Pipeline) reconcileFriends(ctx context.Context, u *models.User, d dto.DTO) error {
	if !d.Has("friendIds") {
		u.Friends = nil
		return nil
	}

	ids, _ := d.StrSlice("friendIds")
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && id != u.UID {
			want[id] = true
		}
	}

	kept := make([]*models.User, 0, len(ids))
	have := make(map[string]bool, len(u.Friends))
	for _, f := range u.Friends {
		if want[f.UID] {
			kept = append(kept, f)
			have[f.UID] = true
		}
	}

	for _, id := range ids {
		if !want[id] || have[id] {
			continue
		}
		have[id] = true

		f, err := p.svc.Users.GetByUID(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			f = models.NewPlaceholderUser(id)
			if err := p.svc.Users.CreateOrUpdate(ctx, f); err != nil {
				return err
			}
			p.svc.Log.Debug(ctx, "created placeholder friend", "uid", id)
		} else if err != nil {
			return err
		}
		kept = append(kept, f)
	}

	u.Friends = kept
	return nil
}

func parseInvites(ctx context.Context, p *Pipeline, d dto.DTO, key string) []models.Invite {
	if !d.Has(key) {
		return nil
	}

	ids, _ := d.StrSlice(key)
	invites := make([]models.Invite, 0, len(ids))
	for _, id := range ids {
		inv, err := models.ParseInviteID(id)
		if err != nil {
			p.svc.Log.Warn(ctx, "ignoring malformed invite id", "id", id, "error", err)
			continue
		}
		invites = append(invites, inv)
	}
	return invites
}
