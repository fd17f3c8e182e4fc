package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/walletbridge/core"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line, cmd, arg string
	}{
		{"balance", "balance", ""},
		{"  new z  ", "new", "z"},
		{"send addr 100 memo text", "send", "addr 100 memo text"},
		{"", "", ""},
	}
	for _, tt := range tests {
		cmd, arg := parseLine(tt.line)
		assert.Equal(t, tt.cmd, cmd, tt.line)
		assert.Equal(t, tt.arg, arg, tt.line)
	}
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WALLETBRIDGE_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WALLETBRIDGE_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("WALLETBRIDGE_TEST_DOTENV"))
}

func TestSettingsFor_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	s, err := settingsFor(cliOptions{chain: "regtest", dataDir: dir, height: 77, logLevel: "debug"})
	require.NoError(t, err)

	assert.Equal(t, "regtest", s.Chain)
	assert.Equal(t, dir, s.DataDir)
	assert.Equal(t, uint64(77), s.Height)
	assert.Equal(t, "debug", s.LogLevel)

	_, err = settingsFor(cliOptions{chain: "moon", dataDir: dir})
	assert.Error(t, err)
}

func TestRun_CreateThenLoad(t *testing.T) {
	opts := cliOptions{chain: "regtest", dataDir: t.TempDir(), height: 100}

	var out, logs bytes.Buffer
	require.NoError(t, run(opts, strings.NewReader("height\nnew t\nquit\n"), &out, &logs))

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &seed))
	assert.Equal(t, uint64(100), seed.Birthday)
	assert.Contains(t, out.String(), `{"height":100}`)
	assert.Contains(t, out.String(), `["tm`)

	// The second start finds the persisted wallet and loads it.
	out.Reset()
	require.NoError(t, run(opts, strings.NewReader("seed\n"), &out, &logs))
	assert.NotContains(t, out.String(), "New wallet created")
	assert.Contains(t, out.String(), seed.Phrase)
}

func TestRun_RestoreFromSeed(t *testing.T) {
	source := cliOptions{chain: "regtest", dataDir: t.TempDir(), height: 50}
	var out, logs bytes.Buffer
	require.NoError(t, run(source, strings.NewReader("addresses\n"), &out, &logs))
	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(strings.Split(out.String(), "\n")[1]), &seed))

	restored := cliOptions{chain: "regtest", dataDir: t.TempDir(), seed: seed.Phrase, birthday: seed.Birthday}
	out.Reset()
	require.NoError(t, run(restored, strings.NewReader("seed\n"), &out, &logs))
	assert.Contains(t, out.String(), "Wallet restored from seed.")
	assert.Contains(t, out.String(), seed.Dump())

	bad := cliOptions{chain: "regtest", dataDir: t.TempDir(), seed: "not a seed"}
	err := run(bad, strings.NewReader(""), &out, &logs)
	assert.ErrorContains(t, err, "invalid seed phrase")
}

func TestRun_AddressQR(t *testing.T) {
	opts := cliOptions{chain: "regtest", dataDir: t.TempDir(), height: 10}

	var out, logs bytes.Buffer
	require.NoError(t, run(opts, strings.NewReader("qr t\nqr\n"), &out, &logs))

	assert.Contains(t, out.String(), "█")
	assert.Contains(t, out.String(), "\ntm")
	assert.Contains(t, out.String(), "\nztestsapling1")
}
