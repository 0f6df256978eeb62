package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/planloop/planloop/internal/common"
)

// Invite pairs a sender and a recipient of a friend invitation. Its identifier
// embeds both sides and the creation instant so reconciliation can recover the
// pairing without a separate join table.
type Invite struct {
	SenderID    string
	RecipientID string
	CreatedAt   time.Time
}

func NewInvite(senderID, recipientID string) Invite {
	return Invite{SenderID: senderID, RecipientID: recipientID, CreatedAt: time.Now().UTC()}
}

// ID returns the composite identifier "<sender>_<recipient>_<unixnano>".
func (i Invite) ID() string {
	return fmt.Sprintf("%s_%s_%d", i.SenderID, i.RecipientID, i.CreatedAt.UnixNano())
}

// ParseInviteID reconstructs an Invite from its composite identifier. User
// ids never contain underscores, so the last two segments are unambiguous.
func ParseInviteID(id string) (Invite, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		return Invite{}, fmt.Errorf("%w: %q", common.ErrorInvalidInviteID, id)
	}

	nanos, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Invite{}, fmt.Errorf("%w: %q", common.ErrorInvalidInviteID, id)
	}

	return Invite{
		SenderID:    parts[0],
		RecipientID: parts[1],
		CreatedAt:   time.Unix(0, nanos).UTC(),
	}, nil
}
