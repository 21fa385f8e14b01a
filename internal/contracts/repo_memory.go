package contracts

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]ContractAnalysis
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]ContractAnalysis),
		byUser: make(map[string][]string),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, record ContractAnalysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[record.ID]; !exists {
		r.byUser[record.UserID] = append(r.byUser[record.UserID], record.ID)
	}
	r.byID[record.ID] = record
	return nil
}

// GetByID returns a record owned by userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (ContractAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return ContractAnalysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok || record.UserID != userID {
		return ContractAnalysis{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns records for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ContractAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	records := make([]ContractAnalysis, 0, len(ids))
	for _, id := range ids {
		records = append(records, r.byID[id])
	}
	r.mu.RUnlock()

	if offset >= len(records) {
		return []ContractAnalysis{}, nil
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], nil
}
