package models

import "github.com/google/uuid"

// User is an identity plus its social graph: symmetric friendships and the
// invites that created them.
type User struct {
	Syncable

	Name  string
	Email string

	// Friends is a symmetric many-to-many relation maintained by explicit
	// add/remove on both sides.
	Friends []*User

	SentInvites     []Invite
	ReceivedInvites []Invite
}

// NewUser creates a locally originated user. A user owns itself.
func NewUser(name, email string) *User {
	uid := uuid.NewString()
	u := &User{Name: name, Email: email}
	u.UID = uid
	u.OwnerID = uid
	u.Touch(uid)
	return u
}

// NewPlaceholderUser creates a uid-only stub standing in for a friend that has
// not been synced locally yet. Placeholders are hydrated by a later incoming
// user record and are never pushed.
func NewPlaceholderUser(uid string) *User {
	u := &User{}
	u.UID = uid
	u.OwnerID = uid
	return u
}

func (u *User) Type() EntityType { return EntityTypeUser }

func (u *User) SetName(name, by string) {
	u.Name = name
	u.Touch(by)
}

func (u *User) SetEmail(email, by string) {
	u.Email = email
	u.Touch(by)
}

// AddFriend links both sides of the friendship and dirties both records.
func (u *User) AddFriend(f *User, by string) {
	if u.HasFriend(f.UID) {
		return
	}
	u.Friends = append(u.Friends, f)
	u.Touch(by)
	f.Friends = append(f.Friends, u)
	f.Touch(by)
}

// RemoveFriend unlinks this side of the friendship. The other side is removed
// by its own RemoveFriend call when both records are available.
func (u *User) RemoveFriend(uid, by string) {
	for i, f := range u.Friends {
		if f.UID == uid {
			u.Friends = append(u.Friends[:i], u.Friends[i+1:]...)
			u.Touch(by)
			return
		}
	}
}

func (u *User) HasFriend(uid string) bool {
	for _, f := range u.Friends {
		if f.UID == uid {
			return true
		}
	}
	return false
}

// FriendIDs returns the uids of the currently linked friends, in link order.
func (u *User) FriendIDs() []string {
	ids := make([]string, 0, len(u.Friends))
	for _, f := range u.Friends {
		ids = append(ids, f.UID)
	}
	return ids
}

func (u *User) AddSentInvite(inv Invite, by string) {
	u.SentInvites = append(u.SentInvites, inv)
	u.Touch(by)
}

func (u *User) AddReceivedInvite(inv Invite, by string) {
	u.ReceivedInvites = append(u.ReceivedInvites, inv)
	u.Touch(by)
}
