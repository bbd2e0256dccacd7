package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adri-engine/adri/internal/models"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name            string
		metadataPresent bool
		templateBound   bool
		want            string
	}{
		{"nothing declared", false, false, models.ModeDiscovery},
		{"metadata only", true, false, models.ModeValidation},
		{"template only", false, true, models.ModeValidation},
		{"both", true, true, models.ModeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectMode(tt.metadataPresent, tt.templateBound))
		})
	}
}
