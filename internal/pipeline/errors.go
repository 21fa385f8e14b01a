package pipeline

import (
	"errors"

	"contract-backend/internal/extract"
	"contract-backend/internal/staging"
)

// Every failure returned by the orchestrator matches exactly one of the first four kinds
// with errors.Is. Failures also keep their cause, so ErrExtractionFailure and
// ErrInvalidStagedData can be matched underneath a Classification or Analysis failure.
var (
	ErrNoInputFile           = errors.New("no file uploaded")
	ErrNoContractType        = errors.New("no contract type provided")
	ErrClassificationFailure = errors.New("contract type detection failed")
	ErrAnalysisFailure       = errors.New("contract analysis failed")

	ErrExtractionFailure = extract.ErrExtractionFailed
	ErrInvalidStagedData = staging.ErrInvalidStagedData
)
