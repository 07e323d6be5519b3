package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SHIFTCLOCK_TEST_GET_ENV", "kiosk-7")

	assert.Equal(t, "kiosk-7", GetEnv("SHIFTCLOCK_TEST_GET_ENV", "default"))
	assert.Equal(t, "default", GetEnv("SHIFTCLOCK_TEST_NOT_SET", "default"))
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		envValue string
		want     string
		prodLike bool
	}{
		{"development", EnvDevelopment, false},
		{"DEVELOPMENT", EnvDevelopment, false},
		{"staging", EnvStaging, true},
		{"Production", EnvProduction, true},
		{"", EnvDevelopment, false},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("SHIFTCLOCK_SERVER_ENVIRONMENT", tt.envValue)

			assert.Equal(t, tt.want, GetEnvironment())
			assert.Equal(t, tt.prodLike, IsProductionLike())
		})
	}
}
