package contracts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"contract-backend/internal/analysis"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, user_id, contract_text, contract_type, tier, result, language, ai_model, degraded, created_at
FROM contract_analyses`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, record ContractAnalysis) error {
	const query = `
INSERT INTO contract_analyses (
	id, user_id, contract_text, contract_type, tier, result, language, ai_model, degraded, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	resultPayload, err := marshalJSONB(record.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.ContractText,
		record.ContractType,
		string(record.Tier),
		resultPayload,
		record.Language,
		record.AIModel,
		record.Degraded,
		record.CreatedAt,
	)
	return err
}

// GetByID returns an analysis owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (ContractAnalysis, error) {
	query := selectColumns + `
WHERE id = $1 AND user_id = $2
LIMIT 1`
	record, err := scanRecord(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ContractAnalysis{}, ErrNotFound
		}
		return ContractAnalysis{}, err
	}
	return record, nil
}

// ListByUser lists analyses for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ContractAnalysis, error) {
	limit = clampListLimit(limit)
	if offset < 0 {
		offset = 0
	}

	query := selectColumns + `
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ContractAnalysis{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (ContractAnalysis, error) {
	var record ContractAnalysis
	var tier string
	var result sql.NullString
	var aiModel sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.ContractText,
		&record.ContractType,
		&tier,
		&result,
		&record.Language,
		&aiModel,
		&record.Degraded,
		&record.CreatedAt,
	); err != nil {
		return ContractAnalysis{}, err
	}
	record.Tier = analysis.Tier(tier)
	if aiModel.Valid {
		record.AIModel = aiModel.String
	}
	if result.Valid {
		if err := json.Unmarshal([]byte(result.String), &record.Result); err != nil {
			return ContractAnalysis{}, err
		}
	}
	return record, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}
