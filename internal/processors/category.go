package processors

import (
	"context"
	"errors"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/models"
)

// applyCategory upserts one incoming category. Creation requires a name; the
// local unique constraint on names rejects a duplicate under a second uid,
// which surfaces as a logged per-item failure.
func (p *Pipeline) applyCategory(ctx context.Context, uid string, d dto.DTO) error {
	c, err := p.svc.Categories.GetByUID(ctx, uid)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if name, _ := d.Str("name"); name == "" {
			return errSkip{reason: "category without name"}
		}
		c = &models.TodoItemCategory{}
		c.UID = uid
	case err != nil:
		return err
	}

	if v, ok := d.Str("name"); ok && v != "" {
		c.Name = v
	}

	applyBase(&c.Syncable, d)
	c.MarkSynced()

	return p.svc.Categories.CreateOrUpdate(ctx, c)
}
