package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEntities_StartDirty(t *testing.T) {
	u := NewUser("Alice", "alice@example.com")
	require.True(t, u.Dirty)
	require.Equal(t, u.UID, u.OwnerID)
	require.Equal(t, u.UID, u.LastModifiedBy)

	item := NewTodoItem("Buy milk", "2%", u.UID)
	require.True(t, item.Dirty)
	require.Equal(t, u.UID, item.OwnerID)

	r := NewRecipe("Pancakes", u.UID)
	require.True(t, r.Dirty)

	m := NewMeal(MealTypeDinner, u.UID)
	require.True(t, m.Dirty)
	require.Equal(t, float64(1), m.ScaleFactor)

	s := NewShoppingListItem("Flour", 500, "g", u.UID)
	require.True(t, s.Dirty)

	c := NewTodoItemCategory("Errands", u.UID)
	require.True(t, c.Dirty)
}

func TestMutators_SetDirtyAndModifier(t *testing.T) {
	item := NewTodoItem("Buy milk", "2%", "u1")
	item.MarkSynced()
	require.False(t, item.Dirty)

	item.SetTitle("Buy oat milk", "u2")
	require.True(t, item.Dirty)
	require.Equal(t, "u2", item.LastModifiedBy)

	item.MarkSynced()
	item.SetCompleted(true, "u1")
	require.True(t, item.Dirty)
	require.Equal(t, "u1", item.LastModifiedBy)

	item.MarkSynced()
	due := time.Now().Add(24 * time.Hour)
	item.SetDueAt(&due, "u1")
	require.True(t, item.Dirty)

	item.MarkSynced()
	item.SetCategory(NewTodoItemCategory("Groceries", "u1"), "u1")
	require.True(t, item.Dirty)
}

func TestAddFriend_LinksBothSidesOnce(t *testing.T) {
	a := NewUser("A", "a@example.com")
	b := NewUser("B", "b@example.com")
	a.MarkSynced()
	b.MarkSynced()

	a.AddFriend(b, a.UID)
	require.True(t, a.HasFriend(b.UID))
	require.True(t, b.HasFriend(a.UID))
	require.True(t, a.Dirty)
	require.True(t, b.Dirty)

	// second add is a no-op
	a.AddFriend(b, a.UID)
	require.Len(t, a.Friends, 1)
	require.Len(t, b.Friends, 1)

	a.RemoveFriend(b.UID, a.UID)
	require.False(t, a.HasFriend(b.UID))
	require.Equal(t, []string{a.UID}, b.FriendIDs())
}

func TestInviteID_RoundTrip(t *testing.T) {
	inv := NewInvite("sender1", "recipient1")
	parsed, err := ParseInviteID(inv.ID())
	require.NoError(t, err)
	require.Equal(t, inv.SenderID, parsed.SenderID)
	require.Equal(t, inv.RecipientID, parsed.RecipientID)
	require.Equal(t, inv.CreatedAt.UnixNano(), parsed.CreatedAt.UnixNano())
}

func TestParseInviteID_Invalid(t *testing.T) {
	for _, id := range []string{"", "a_b", "a_b_notanumber", "a_b_c_d"} {
		_, err := ParseInviteID(id)
		require.Error(t, err, id)
	}
}

func TestParseRecurrenceRule(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		wantErr  bool
		freq     Freq
		interval int
	}{
		{in: "", ok: false},
		{in: "FREQ=DAILY", ok: true, freq: Daily, interval: 1},
		{in: "FREQ=WEEKLY;INTERVAL=2", ok: true, freq: Weekly, interval: 2},
		{in: "FREQ=MONTHLY", ok: true, freq: Monthly, interval: 1},
		{in: "INTERVAL=2", wantErr: true},
		{in: "FREQ=SOMETIMES", wantErr: true},
		{in: "FREQ=DAILY;INTERVAL=0", wantErr: true},
		{in: "garbage", wantErr: true},
	}

	for _, tc := range tests {
		rule, ok, err := ParseRecurrenceRule(tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		if ok {
			require.Equal(t, tc.freq, rule.Freq, tc.in)
			require.Equal(t, tc.interval, rule.Interval, tc.in)
		}
	}
}

func TestRecurrenceRule_Next(t *testing.T) {
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	require.Equal(t, base.AddDate(0, 0, 1), RecurrenceRule{Freq: Daily, Interval: 1}.Next(base))
	require.Equal(t, base.AddDate(0, 0, 14), RecurrenceRule{Freq: Weekly, Interval: 2}.Next(base))
	require.Equal(t, base.AddDate(0, 1, 0), RecurrenceRule{Freq: Monthly, Interval: 1}.Next(base))
	require.Equal(t, base.AddDate(1, 0, 0), RecurrenceRule{Freq: Yearly, Interval: 1}.Next(base))
}

func TestRecurrenceRule_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"FREQ=DAILY", "FREQ=WEEKLY;INTERVAL=2", "FREQ=YEARLY"} {
		rule, ok, err := ParseRecurrenceRule(s)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, s, rule.String())
	}
}
