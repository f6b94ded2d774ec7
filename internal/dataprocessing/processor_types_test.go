package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absencecli/internal/config"
	"absencecli/pkg/contracts/domain"
)

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ProcessingConfig{Unit: "minutes", ErrorPolicy: "skip", Rounding: "round"})
	require.NoError(t, err)
	assert.Equal(t, ProcessingOptions{Unit: domain.UnitMinutes, Policy: PolicySkip, Rounding: RoundingRound}, opts)

	_, err = OptionsFromConfig(config.ProcessingConfig{ErrorPolicy: "retry"})
	assert.ErrorContains(t, err, "unknown error policy")
}

func TestProcessingOptions_Override(t *testing.T) {
	tests := []struct {
		name                   string
		unit, policy, rounding string
		want                   ProcessingOptions
		wantErr                bool
	}{
		{name: "nothing set keeps defaults", want: DefaultOptions()},
		{
			name: "all overridden", unit: "MINUTES", policy: "skip", rounding: "round",
			want: ProcessingOptions{Unit: domain.UnitMinutes, Policy: PolicySkip, Rounding: RoundingRound},
		},
		{
			name: "partial", policy: "skip",
			want: ProcessingOptions{Unit: domain.UnitHours, Policy: PolicySkip, Rounding: RoundingTruncate},
		},
		{name: "bad unit", unit: "days", wantErr: true},
		{name: "bad rounding", rounding: "ceil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultOptions().Override(tt.unit, tt.policy, tt.rounding)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadOptionsFromConfig(t *testing.T) {
	assert.Equal(t, ReadOptions{Delimiter: ',', Encoding: EncodingWindows1252},
		ReadOptionsFromConfig(config.ProcessingConfig{Delimiter: ",", Encoding: "windows-1252"}))
	assert.Equal(t, DefaultReadOptions(), ReadOptionsFromConfig(config.ProcessingConfig{}))
}
