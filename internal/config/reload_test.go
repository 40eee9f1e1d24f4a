// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolderReloadSwapsCredentials(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "spacetrack:\n  username: alice\n  password: one\n")

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	updates := make(chan AppConfig, 1)
	holder.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("spacetrack:\n  username: alice\n  password: two\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "two", holder.SpaceTrack().Password)
	select {
	case got := <-updates:
		assert.Equal(t, "two", got.SpaceTrack.Password)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestConfigHolderReloadKeepsOldConfigOnError(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "spacetrack:\n  username: alice\n  password: one\n")

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("spacetrack:\n  baseURL: ftp://nope\n"), 0o600))
	require.Error(t, holder.Reload(context.Background()))

	assert.Equal(t, "one", holder.Get().SpaceTrack.Password)
}

func TestConfigHolderWatcherReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "spacetrack:\n  username: alice\n  password: one\n")

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, holder.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("spacetrack:\n  username: bob\n  password: one\n"), 0o600))

	require.Eventually(t, func() bool {
		return holder.SpaceTrack().Username == "bob"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestConfigHolderWatcherDisabledWithoutFile(t *testing.T) {
	holder := NewConfigHolder(Defaults(), NewLoader("", ""))
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Stop()
}
