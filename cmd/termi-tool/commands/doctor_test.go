package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorNoAccounts(t *testing.T) {
	cfg := testConfig(t)

	// Warns but does not fail when the pool is empty.
	_, err := runCommand(t, NewDoctorCommand(cfg))
	require.NoError(t, err)
}

func TestDoctorHealthyAccounts(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCommand(t, NewAccountsAddCommand(cfg), "alice@gmail.com", "--key", "key-a")
	require.NoError(t, err)

	output, err := runCommand(t, NewDoctorCommand(cfg))
	require.NoError(t, err)
	assert.Contains(t, output, "alice@gmail.com")
	assert.Contains(t, output, "ok")
}

func TestDoctorBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Path = cfg.Path + ".missing"

	_, err := runCommand(t, NewDoctorCommand(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
