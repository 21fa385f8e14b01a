// Package pipeline runs an uploaded contract through staging, extraction, the model and
// response normalization. Staged bytes are deleted before either operation returns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contract-backend/internal/analysis"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/staging"
)

// Language tags every analysis produced by the pipeline.
const Language = "en"

const cleanupTimeout = 5 * time.Second

// Extractor turns a staged payload into plain text.
type Extractor func(ctx context.Context, payload staging.Payload) (string, error)

// Orchestrator sequences one classify or analyze run. The model call has no internal
// deadline; callers bound it through ctx.
type Orchestrator struct {
	Staging staging.Cache
	LLM     llm.Client
	// Extract defaults to extract.Text.
	Extract Extractor
	// Model is recorded as provenance on every report.
	Model string
	// TTL defaults to staging.DefaultTTL.
	TTL time.Duration
	Now func() time.Time
}

// Report is a finished analysis plus the metadata needed to persist it.
type Report struct {
	Result       analysis.Result
	ContractType string
	Tier         analysis.Tier
	Model        string
	Language     string
	ContractText string
	// Degraded is set when the response could not be parsed and fields were recovered
	// by pattern matching.
	Degraded bool
}

// Classify asks the model for a single contract type label.
func (o *Orchestrator) Classify(ctx context.Context, userID string, file []byte) (string, error) {
	if len(file) == 0 {
		return "", ErrNoInputFile
	}
	metrics.IncClassify()
	startedAt := o.now()
	key := staging.Key(userID, startedAt)

	label, err := o.classify(ctx, key, file)

	fields := o.observe(ctx, userID, key, startedAt)
	if err != nil {
		metrics.IncClassifyFailed()
		fields["status"] = "failed"
		fields["error"] = err
		telemetry.Error("pipeline.classify", fields)
		return "", fmt.Errorf("%w: %w", ErrClassificationFailure, err)
	}
	fields["status"] = "ok"
	fields["contract_type"] = label
	telemetry.Info("pipeline.classify", fields)
	return label, nil
}

func (o *Orchestrator) classify(ctx context.Context, key string, file []byte) (string, error) {
	if err := o.ready(); err != nil {
		return "", err
	}
	defer o.cleanup(ctx, key)

	text, err := o.stageAndExtract(ctx, key, file)
	if err != nil {
		return "", err
	}
	resp, err := o.LLM.Generate(ctx, llm.ClassificationPrompt(text))
	if err != nil {
		return "", fmt.Errorf("model: %w", err)
	}
	if resp == nil {
		return "", llm.ErrEmptyResponse
	}
	label := strings.TrimSpace(resp.Text())
	if label == "" {
		return "", llm.ErrEmptyResponse
	}
	return label, nil
}

// Analyze produces a tiered analysis of the uploaded contract.
func (o *Orchestrator) Analyze(ctx context.Context, userID string, file []byte, contractType string, tier analysis.Tier) (Report, error) {
	if len(file) == 0 {
		return Report{}, ErrNoInputFile
	}
	contractType = strings.TrimSpace(contractType)
	if contractType == "" {
		return Report{}, ErrNoContractType
	}
	metrics.IncAnalyze()
	startedAt := o.now()
	key := staging.Key(userID, startedAt)

	report, err := o.analyze(ctx, key, file, contractType, tier)

	fields := o.observe(ctx, userID, key, startedAt)
	fields["tier"] = string(tier)
	fields["contract_type"] = contractType
	if err != nil {
		metrics.IncAnalyzeFailed()
		fields["status"] = "failed"
		fields["error"] = err
		telemetry.Error("pipeline.analyze", fields)
		return Report{}, fmt.Errorf("%w: %w", ErrAnalysisFailure, err)
	}
	fields["status"] = "ok"
	fields["degraded"] = report.Degraded
	telemetry.Info("pipeline.analyze", fields)
	return report, nil
}

func (o *Orchestrator) analyze(ctx context.Context, key string, file []byte, contractType string, tier analysis.Tier) (Report, error) {
	if _, err := analysis.ParseTier(string(tier)); err != nil {
		return Report{}, err
	}
	if err := o.ready(); err != nil {
		return Report{}, err
	}
	defer o.cleanup(ctx, key)

	text, err := o.stageAndExtract(ctx, key, file)
	if err != nil {
		return Report{}, err
	}
	// An empty or blocked reply is normalized like any other unusable text.
	var raw string
	resp, err := o.LLM.Generate(ctx, llm.AnalysisPrompt(text, tier, contractType))
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
	case err != nil:
		return Report{}, fmt.Errorf("model: %w", err)
	case resp != nil:
		raw = resp.Text()
	}

	result, degraded, err := normalize(ctx, raw, key)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Result:       result,
		ContractType: contractType,
		Tier:         tier,
		Model:        o.Model,
		Language:     Language,
		ContractText: text,
		Degraded:     degraded,
	}, nil
}

// normalize parses the response strictly and falls back to field recovery when that fails.
// Strictly parsed responses must still carry summary, risks and opportunities.
func normalize(ctx context.Context, raw string, key string) (analysis.Result, bool, error) {
	parsed, parseErr := analysis.Parse(raw)
	if parseErr == nil {
		if err := analysis.Validate(parsed); err != nil {
			return analysis.Result{}, false, err
		}
		result, err := analysis.FromMap(parsed)
		if err == nil {
			return result, false, nil
		}
		parseErr = err
	}

	result := analysis.Fallback(raw)
	metrics.IncAnalyzeDegraded()
	telemetry.Warn("analysis.fallback_used", map[string]any{
		"request_id":    telemetry.RequestIDFromContext(ctx),
		"staged_key":    key,
		"parse_error":   parseErr,
		"risks":         len(result.Risks),
		"opportunities": len(result.Opportunities),
	})
	return result, true, nil
}

func (o *Orchestrator) stageAndExtract(ctx context.Context, key string, file []byte) (string, error) {
	if err := o.Staging.Put(ctx, key, file, o.ttl()); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	payload, err := o.Staging.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read staged upload: %w", err)
	}
	extractor := o.Extract
	if extractor == nil {
		extractor = extract.Text
	}
	return extractor(ctx, payload)
}

// cleanup runs even when ctx is already cancelled. Failures are logged and counted only.
func (o *Orchestrator) cleanup(ctx context.Context, key string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := o.Staging.Delete(cleanupCtx, key); err != nil {
		metrics.IncCleanupFailed()
		telemetry.Warn("staging.cleanup_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"staged_key": key,
			"error":      err,
		})
	}
}

func (o *Orchestrator) ready() error {
	if o.Staging == nil {
		return errors.New("staging cache not configured")
	}
	if o.LLM == nil {
		return errors.New("llm client not configured")
	}
	return nil
}

// observe records the run duration and returns the shared log fields.
func (o *Orchestrator) observe(ctx context.Context, userID, key string, startedAt time.Time) map[string]any {
	durationMs := o.now().Sub(startedAt).Milliseconds()
	metrics.ObservePipelineDurationMs(float64(durationMs))
	return map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"user_id":     userID,
		"staged_key":  key,
		"duration_ms": durationMs,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) ttl() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return staging.DefaultTTL
}
