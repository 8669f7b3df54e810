package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(Default())
	require.NoError(t, err)
	b, err := Fingerprint(Default())
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"output path", func(c *Config) { c.OutputPath = "other.csv" }},
		{"row width", func(c *Config) { c.Batch.RowWidth = 4 }},
		{"seed", func(c *Config) { c.Batch.Seed = 1 }},
		{"stratum order", func(c *Config) {
			c.Batch.Dim1.Values = []string{"Asthma", "HIV", "Fibromyalgia"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			got, err := Fingerprint(cfg)
			require.NoError(t, err)
			assert.NotEqual(t, a, got)
		})
	}
}
