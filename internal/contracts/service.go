package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contract-backend/internal/analysis"
	"contract-backend/internal/pipeline"
	"contract-backend/internal/shared/telemetry"
)

// Pipeline runs uploads through classification and analysis.
type Pipeline interface {
	Classify(ctx context.Context, userID string, file []byte) (string, error)
	Analyze(ctx context.Context, userID string, file []byte, contractType string, tier analysis.Tier) (pipeline.Report, error)
}

// Service coordinates the pipeline with persistence and the result cache.
type Service struct {
	Pipeline Pipeline
	Repo     Repo
	// Cache is optional.
	Cache    ResultCache
	CacheTTL time.Duration
	Now      func() time.Time
	NewID    func() string
}

// DetectType returns the contract type label for an upload.
func (s *Service) DetectType(ctx context.Context, userID string, file []byte) (string, error) {
	if s.Pipeline == nil {
		return "", errors.New("pipeline not configured")
	}
	return s.Pipeline.Classify(ctx, userID, file)
}

// Analyze runs a tiered analysis and persists the record.
func (s *Service) Analyze(ctx context.Context, userID string, file []byte, contractType string, tier analysis.Tier) (ContractAnalysis, error) {
	if s.Pipeline == nil || s.Repo == nil {
		return ContractAnalysis{}, errors.New("contracts service not configured")
	}
	report, err := s.Pipeline.Analyze(ctx, userID, file, contractType, tier)
	if err != nil {
		return ContractAnalysis{}, err
	}

	record := ContractAnalysis{
		ID:           s.newID(),
		UserID:       userID,
		ContractText: report.ContractText,
		ContractType: report.ContractType,
		Tier:         report.Tier,
		Result:       report.Result,
		Language:     report.Language,
		AIModel:      report.Model,
		Degraded:     report.Degraded,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		return ContractAnalysis{}, fmt.Errorf("store analysis: %w", err)
	}
	s.cacheRecord(ctx, record)
	return record, nil
}

// List returns a user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]ContractAnalysis, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns one analysis owned by userID, consulting the result cache first.
func (s *Service) Get(ctx context.Context, userID, id string) (ContractAnalysis, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return ContractAnalysis{}, ErrInvalidID
	}

	if s.Cache != nil {
		record, err := s.Cache.Get(ctx, id)
		switch {
		case err == nil:
			if record.UserID != userID {
				return ContractAnalysis{}, ErrNotFound
			}
			return record, nil
		case !errors.Is(err, ErrCacheMiss):
			telemetry.Warn("contracts.cache_get_failed", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(ctx),
				"analysis_id": id,
				"error":       err,
			})
		}
	}

	record, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return ContractAnalysis{}, err
	}
	s.cacheRecord(ctx, record)
	return record, nil
}

func (s *Service) cacheRecord(ctx context.Context, record ContractAnalysis) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, record, s.CacheTTL); err != nil {
		telemetry.Warn("contracts.cache_set_failed", map[string]any{
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"analysis_id": record.ID,
			"error":       err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
