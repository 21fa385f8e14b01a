package contracts

import (
	"io"
	"testing"
	"time"

	"contract-backend/internal/analysis"
	"contract-backend/internal/shared/telemetry"
)

const (
	testID      = "6f1c2a1e-3b9d-4c55-9a0e-2d7c1b8e4f10"
	otherTestID = "0b8f7d3c-9e2a-4f61-8c4d-5a3e2b1c0d9f"
)

func quietLogs(t *testing.T) {
	t.Helper()
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(restore)
}

func sampleRecord(id, userID string, createdAt time.Time) ContractAnalysis {
	return ContractAnalysis{
		ID:           id,
		UserID:       userID,
		ContractText: "The tenant shall pay rent monthly.",
		ContractType: "Lease Agreement",
		Tier:         analysis.TierPremium,
		Result: analysis.Result{
			Risks:         []analysis.Risk{{Risk: "Auto renewal", Explanation: "Renews yearly"}},
			Opportunities: []analysis.Opportunity{},
			Summary:       "Standard lease",
			OverallScore:  "72",
		},
		Language:  "en",
		AIModel:   "gemini-2.5-flash",
		CreatedAt: createdAt,
	}
}
