//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request EvidenceRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "feature text only",
			request: EvidenceRequest{FeatureText: "AI resume screening for ATS"},
		},
		{
			name:    "keywords only",
			request: EvidenceRequest{Keywords: []string{"resume", "screening"}},
		},
		{
			name: "feature text with context",
			request: EvidenceRequest{
				FeatureText:     "Invoice reconciliation",
				BusinessContext: "Selling to small accounting firms",
			},
		},
		{
			name:    "empty request",
			request: EvidenceRequest{},
			wantErr: true,
			errMsg:  "required_without",
		},
		{
			name:    "feature text too long",
			request: EvidenceRequest{FeatureText: strings.Repeat("a", 5001)},
			wantErr: true,
			errMsg:  "max",
		},
		{
			name:    "empty keyword",
			request: EvidenceRequest{Keywords: []string{"resume", ""}},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "too many keywords",
			request: EvidenceRequest{FeatureText: "x", Keywords: strings.Fields(strings.Repeat("kw ", 21))},
			wantErr: true,
			errMsg:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEvidenceRequest_JSON(t *testing.T) {
	var req EvidenceRequest
	err := json.Unmarshal([]byte(`{"feature_text":"resume screening","business_context":"HR teams","keywords":["ats"]}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "resume screening", req.FeatureText)
	assert.Equal(t, "HR teams", req.BusinessContext)
	assert.Equal(t, []string{"ats"}, req.Keywords)
}
