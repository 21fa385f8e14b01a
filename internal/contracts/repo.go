package contracts

import "context"

// List page bounds shared by the handler and the Postgres repo.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampListLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// Repo defines persistence operations for contract analyses.
type Repo interface {
	Create(ctx context.Context, record ContractAnalysis) error
	GetByID(ctx context.Context, userID, id string) (ContractAnalysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ContractAnalysis, error)
}
