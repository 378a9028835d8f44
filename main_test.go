package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSensitiveHeaders(t *testing.T) {
	out := filterSensitiveHeaders(map[string]string{
		"authorization": "Bearer abc",
		"x-user-id":     "42",
		"content-type":  "application/json",
	})
	assert.Equal(t, "[REDACTED]", out["authorization"])
	assert.Equal(t, "[REDACTED]", out["x-user-id"])
	assert.Equal(t, "application/json", out["content-type"])
}
