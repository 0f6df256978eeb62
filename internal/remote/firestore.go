package remote

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/logging"
	"github.com/planloop/planloop/internal/repositories/metadata"
)

// FirestoreClient implements Client against a Firestore project with one
// top-level collection per entity kind. Documents are keyed by entity uid and
// carry a server-assigned lastModified timestamp.
type FirestoreClient struct {
	fs        *firestore.Client
	meta      metadata.Repository
	collabs   Collaborators
	log       logging.Logger
	batchSize int
}

func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string,
	meta metadata.Repository, collabs Collaborators, log logging.Logger, batchSize int) (*FirestoreClient, error) {

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	fs, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorRemote, err)
	}

	return newFirestoreClient(fs, meta, collabs, log, batchSize), nil
}

func newFirestoreClient(fs *firestore.Client, meta metadata.Repository, collabs Collaborators,
	log logging.Logger, batchSize int) *FirestoreClient {
	if batchSize <= 0 || batchSize > HardBatchLimit {
		batchSize = DefaultBatchSize
	}
	return &FirestoreClient{fs: fs, meta: meta, collabs: collabs, log: log, batchSize: batchSize}
}

func (c *FirestoreClient) Close() error {
	return c.fs.Close()
}

func (c *FirestoreClient) SyncEntities(ctx context.Context, dtos []dto.DTO) (Result, error) {
	batches, skipped := prepareBatches(dtos, c.batchSize)
	if skipped > 0 {
		c.log.Warn(ctx, "skipping invalid entities", "count", skipped)
	}

	res, err := commitSequential(ctx, batches, c)
	res.Skipped = skipped
	return res, err
}

// commit writes one batch atomically, letting the server assign lastModified.
func (c *FirestoreClient) commit(ctx context.Context, batch []dto.DTO) error {
	b := c.fs.Batch()
	for _, d := range batch {
		col := collections[mustStr(d, dto.KeyEntityType)]
		uid := mustStr(d, dto.KeyUID)

		data := make(map[string]any, len(d)+1)
		for k, v := range d {
			data[k] = v
		}
		data["lastModified"] = firestore.ServerTimestamp

		b.Set(c.fs.Collection(col).Doc(uid), data, firestore.MergeAll)
	}

	_, err := b.Commit(ctx)
	return err
}

func (c *FirestoreClient) FetchUpdatedEntities(ctx context.Context, userID string) (UpdateBatch, error) {

	last, err := c.lastSync(ctx, userID)
	if err != nil {
		return nil, err
	}

	collabIDs, err := c.collabs.CollaboratorIDs(ctx, userID)
	if err != nil {
		// a missing local user record just means nobody shares with us yet
		c.log.Warn(ctx, "no collaborators resolved", "user", userID, "error", err)
		collabIDs = nil
	}

	// The owned and shared queries across all entity types are independent
	// reads; issue them concurrently and join before merging.
	g, gctx := errgroup.WithContext(ctx)
	merger := newResultMerger(last)

	for typ, col := range collections {
		owned := c.fs.Collection(col).
			Where("ownerId", "==", userID).
			Where("lastModified", ">", last)
		g.Go(func() error {
			return c.collect(gctx, typ, owned, "", merger)
		})

		for _, collab := range collabIDs {
			shared := c.fs.Collection(col).
				Where("ownerId", "==", collab).
				Where("isShared", "==", true).
				Where("lastModified", ">", last)
			g.Go(func() error {
				// exclude echoes of our own edits to shared records
				return c.collect(gctx, typ, shared, userID, merger)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorRemote, err)
	}

	if mark, advanced := merger.watermark(last); advanced {
		if err := c.setLastSync(ctx, userID, mark); err != nil {
			return nil, err
		}
	}

	return merger.result(), nil
}

// collect drains one query into the shared merger.
func (c *FirestoreClient) collect(ctx context.Context, typ string, q firestore.Query,
	excludeModifier string, merger *resultMerger) error {

	it := q.Documents(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}

		merger.add(typ, dto.DTO(doc.Data()), excludeModifier)
	}
}

const lastSyncKeyPrefix = "lastSync_"

// lastSync returns the user's persisted low-water mark, defaulting to the
// epoch when the user has never synced.
func (c *FirestoreClient) lastSync(ctx context.Context, userID string) (time.Time, error) {
	raw, err := c.meta.Get(ctx, lastSyncKeyPrefix+userID)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Unix(0, 0).UTC(), nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.log.Warn(ctx, "invalid lastSync value, resetting to epoch", "user", userID, "value", raw)
		return time.Unix(0, 0).UTC(), nil
	}
	return t, nil
}

func (c *FirestoreClient) setLastSync(ctx context.Context, userID string, t time.Time) error {
	return c.meta.Set(ctx, lastSyncKeyPrefix+userID, t.UTC().Format(time.RFC3339Nano))
}
