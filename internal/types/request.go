// Package types provides the request and record types shared by the CLI, the
// HTTP server and the persistence layer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EvidenceRequest asks the engine to gather evidence for a product feature.
// Keywords, when set, replace the keywords derived from FeatureText.
type EvidenceRequest struct {
	FeatureText     string   `json:"feature_text" validate:"required_without=Keywords,max=5000"`
	BusinessContext string   `json:"business_context,omitempty" validate:"max=5000"`
	Keywords        []string `json:"keywords,omitempty" validate:"omitempty,max=20,dive,required,max=64"`
}

// Validate validates the EvidenceRequest using the validator.
func (r *EvidenceRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EvidenceRun is a stored evidence run without its document.
type EvidenceRun struct {
	ID          uuid.UUID `json:"id"`
	FeatureText string    `json:"feature_text"`
	Keywords    []string  `json:"keywords"`
	Overall     int       `json:"overall_score"`
	CreatedAt   time.Time `json:"created_at"`
}
