package remote

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/planloop/planloop/internal/dto"
)

// subscription tracks one set of live watches for a user: an owned watch per
// entity collection, a watch on the user's own document to follow friend list
// changes, and a shared watch per collaborator per collection.
type subscription struct {
	c        *FirestoreClient
	userID   string
	onUpdate func(UpdateBatch)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	watchCancels map[string]context.CancelFunc

	deliverMu sync.Mutex
	cancelled bool
}

func (c *FirestoreClient) SubscribeToEntityUpdates(ctx context.Context, userID string,
	onUpdate func(UpdateBatch)) (CancelFunc, error) {

	sctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		c:            c,
		userID:       userID,
		onUpdate:     onUpdate,
		ctx:          sctx,
		cancel:       cancel,
		watchCancels: map[string]context.CancelFunc{},
	}

	for typ, col := range collections {
		q := c.fs.Collection(col).Where("ownerId", "==", userID)
		s.addWatch("own/"+typ, typ, q)
	}

	s.watchCollaborators()

	return s.cancelAll, nil
}

// addWatch starts one snapshot listener. The watch survives until its own
// cancel func runs or the whole subscription is cancelled.
func (s *subscription) addWatch(key, typ string, q firestore.Query) {
	wctx, wcancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	if _, exists := s.watchCancels[key]; exists {
		s.mu.Unlock()
		wcancel()
		return
	}
	s.watchCancels[key] = wcancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		it := q.Snapshots(wctx)
		defer it.Stop()

		var lastRead time.Time
		for {
			snap, err := it.Next()
			if err != nil {
				if wctx.Err() == nil {
					s.c.log.Error(wctx, "snapshot listener failed", "watch", key, "error", err)
				}
				return
			}

			// Firestore occasionally redelivers a snapshot at the same read
			// time; suppress those so the callback sees each change once.
			if !snap.ReadTime.After(lastRead) {
				continue
			}
			lastRead = snap.ReadTime

			batch := UpdateBatch{}
			for _, ch := range snap.Changes {
				if ch.Kind == firestore.DocumentRemoved {
					continue
				}
				d := dto.DTO(ch.Doc.Data())
				if by, _ := d.Str("lastModifiedBy"); by == s.userID {
					continue
				}
				batch[typ] = append(batch[typ], d)
			}
			if len(batch) == 0 {
				continue
			}
			s.deliver(batch)
		}
	}()
}

func (s *subscription) removeWatch(key string) {
	s.mu.Lock()
	wcancel, ok := s.watchCancels[key]
	if ok {
		delete(s.watchCancels, key)
	}
	s.mu.Unlock()
	if ok {
		wcancel()
	}
}

// watchCollaborators follows the user's own document and reconciles shared
// watches against its friendIds field as friendships come and go.
func (s *subscription) watchCollaborators() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		it := s.c.fs.Collection(collections["User"]).Doc(s.userID).Snapshots(s.ctx)
		defer it.Stop()

		active := map[string]bool{}
		for {
			snap, err := it.Next()
			if err != nil {
				if s.ctx.Err() == nil {
					s.c.log.Error(s.ctx, "user document listener failed", "user", s.userID, "error", err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}

			current := map[string]bool{}
			friendIDs, _ := dto.DTO(snap.Data()).StrSlice("friendIds")
			for _, id := range friendIDs {
				if id != "" && id != s.userID {
					current[id] = true
				}
			}

			for id := range current {
				if !active[id] {
					s.addCollaborator(id)
				}
			}
			for id := range active {
				if !current[id] {
					s.removeCollaborator(id)
				}
			}
			active = current
		}
	}()
}

func (s *subscription) addCollaborator(collabID string) {
	for typ, col := range collections {
		q := s.c.fs.Collection(col).
			Where("ownerId", "==", collabID).
			Where("isShared", "==", true)
		s.addWatch("shared/"+collabID+"/"+typ, typ, q)
	}
}

func (s *subscription) removeCollaborator(collabID string) {
	for typ := range collections {
		s.removeWatch("shared/" + collabID + "/" + typ)
	}
}

// deliver serializes callbacks and guarantees none fires once cancelAll has
// returned.
func (s *subscription) deliver(batch UpdateBatch) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.cancelled {
		return
	}
	s.onUpdate(batch)
}

func (s *subscription) cancelAll() {
	s.deliverMu.Lock()
	s.cancelled = true
	s.deliverMu.Unlock()

	s.cancel()
	s.wg.Wait()
}
