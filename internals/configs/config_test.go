package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SCHOOLHUB_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("SCHOOLHUB_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SCHOOLHUB_TEST_MISSING", "fallback"))
	assert.Equal(t, "", GetEnv("SCHOOLHUB_TEST_MISSING"))
}

func TestTypedEnvAccessors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T)
	}{
		{"int ok", "42", func(t *testing.T) { assert.Equal(t, 42, GetEnvInt("SCHOOLHUB_TYPED", 7)) }},
		{"int invalid", "abc", func(t *testing.T) { assert.Equal(t, 7, GetEnvInt("SCHOOLHUB_TYPED", 7)) }},
		{"bool ok", "true", func(t *testing.T) { assert.True(t, GetEnvBool("SCHOOLHUB_TYPED", false)) }},
		{"bool invalid", "maybe", func(t *testing.T) { assert.False(t, GetEnvBool("SCHOOLHUB_TYPED", false)) }},
		{"duration ok", "90s", func(t *testing.T) {
			assert.Equal(t, 90*time.Second, GetEnvDuration("SCHOOLHUB_TYPED", time.Minute))
		}},
		{"duration invalid", "soon", func(t *testing.T) {
			assert.Equal(t, time.Minute, GetEnvDuration("SCHOOLHUB_TYPED", time.Minute))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SCHOOLHUB_TYPED", tc.value)
			tc.check(t)
		})
	}
}
