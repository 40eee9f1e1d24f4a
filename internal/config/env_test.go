// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHelpers(t *testing.T) {
	t.Setenv("EOSVC_TEST_INT", "42")
	t.Setenv("EOSVC_TEST_BAD_INT", "forty-two")
	t.Setenv("EOSVC_TEST_DUR", "2m")
	t.Setenv("EOSVC_TEST_BOOL", "yes")
	t.Setenv("EOSVC_TEST_FLOAT", "0.25")
	t.Setenv("EOSVC_TEST_EMPTY", "")
	t.Setenv("EOSVC_TEST_LIST", " a, ,b ,c")

	assert.Equal(t, 42, ParseInt("EOSVC_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("EOSVC_TEST_BAD_INT", 1))
	assert.Equal(t, 2*time.Minute, ParseDuration("EOSVC_TEST_DUR", time.Second))
	assert.True(t, ParseBool("EOSVC_TEST_BOOL", false))
	assert.InDelta(t, 0.25, ParseFloat("EOSVC_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, "fallback", ParseString("EOSVC_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", ParseString("EOSVC_TEST_UNSET_KEY", "fallback"))
	assert.Equal(t, []string{"a", "b", "c"}, ParseStringList("EOSVC_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseStringList("EOSVC_TEST_EMPTY", []string{"x"}))
}

func TestMaskSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.SpaceTrack.Username = "alice"
	cfg.SpaceTrack.Password = "hunter2"

	out, ok := MaskSecrets(cfg).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", MaskSecrets(cfg))
	}
	st := out["spacetrack"].(map[string]any)
	assert.Equal(t, "***", st["username"])
	assert.Equal(t, "***", st["password"])
	assert.Equal(t, "https://www.space-track.org", st["baseURL"])
	assert.Equal(t, "30s", st["timeout"])
	assert.NotContains(t, out, "Version")
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://host/path", MaskURL("https://user:pw@host/path"))
	assert.Equal(t, "https://host", MaskURL("https://host"))
	assert.Equal(t, "", MaskURL(""))
}
