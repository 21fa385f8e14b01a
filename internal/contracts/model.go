package contracts

import (
	"time"

	"contract-backend/internal/analysis"
)

// ContractAnalysis is a stored analysis. The analysis fields are flattened into the
// record when encoded as JSON.
type ContractAnalysis struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	ContractText string        `json:"contractText"`
	ContractType string        `json:"contractType"`
	Tier         analysis.Tier `json:"tier"`
	analysis.Result
	Language  string    `json:"language"`
	AIModel   string    `json:"aiModel"`
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"createdAt"`
}
