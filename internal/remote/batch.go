package remote

import (
	"context"
	"fmt"

	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
)

// HardBatchLimit is the backend's cap on operations per atomic batch.
// DefaultBatchSize stays safely under it.
const (
	HardBatchLimit   = 500
	DefaultBatchSize = 450
)

// prepareBatches validates and partitions DTOs into ordered batches of at
// most size entries. A DTO missing entityType, uid or ownerId is skipped and
// counted, never aborting the call.
func prepareBatches(dtos []dto.DTO, size int) (batches [][]dto.DTO, skipped int) {
	if size <= 0 || size > HardBatchLimit {
		size = DefaultBatchSize
	}

	valid := make([]dto.DTO, 0, len(dtos))
	for _, d := range dtos {
		if !validDTO(d) {
			skipped++
			continue
		}
		valid = append(valid, d)
	}

	for start := 0; start < len(valid); start += size {
		end := start + size
		if end > len(valid) {
			end = len(valid)
		}
		batches = append(batches, valid[start:end])
	}

	return batches, skipped
}

func validDTO(d dto.DTO) bool {
	for _, key := range []string{dto.KeyEntityType, dto.KeyUID, dto.KeyOwnerID} {
		if v, ok := d.Str(key); !ok || v == "" {
			return false
		}
	}
	if _, ok := collections[mustStr(d, dto.KeyEntityType)]; !ok {
		return false
	}
	return true
}

func mustStr(d dto.DTO, key string) string {
	v, _ := d.Str(key)
	return v
}

// batchCommitter commits one batch of DTOs atomically.
type batchCommitter interface {
	commit(ctx context.Context, batch []dto.DTO) error
}

// commitSequential commits batches strictly in order: batch n+1 is not
// started until batch n's commit returned. The first failure aborts all
// subsequent batches; already-committed batches are not rolled back.
func commitSequential(ctx context.Context, batches [][]dto.DTO, committer batchCommitter) (Result, error) {
	var res Result
	for n, batch := range batches {
		if err := committer.commit(ctx, batch); err != nil {
			return res, fmt.Errorf("%w: batch %d of %d: %v", common.ErrorRemote, n+1, len(batches), err)
		}
		res.CommittedBatches++
		res.Synced += len(batch)
		for _, d := range batch {
			res.SyncedUIDs = append(res.SyncedUIDs, mustStr(d, dto.KeyUID))
		}
	}
	return res, nil
}
