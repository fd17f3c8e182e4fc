package walletbridge

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/walletbridge/config"
	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/internal/testutil"
	"github.com/hupe1980/walletbridge/logging"
)

func newFakeBridge(factory *testutil.FakeFactory, resolver *testutil.FakeResolver) *Bridge {
	return New(func(o *Options) {
		o.Factory = factory
		o.Resolver = resolver
	})
}

func newWalletBridge(t *testing.T) (*Bridge, config.Settings) {
	t.Helper()
	settings := config.DefaultSettings()
	settings.DataDir = t.TempDir()
	settings.Chain = config.ChainTest
	settings.Height = 1_500_000

	b := New(func(o *Options) {
		o.Resolver = config.NewResolver(settings, nil)
	})
	t.Cleanup(func() { _ = b.Close() })
	return b, settings
}

func TestBridge_ExecuteBeforeInitialize(t *testing.T) {
	b := newFakeBridge(testutil.NewFakeFactory(), testutil.NewFakeResolver(1))

	resp := b.Execute("balance", "")
	assert.Equal(t, "Error: Light Client is not initialized", resp)
	assert.True(t, IsError(resp))
}

func TestBridge_InitializeResponses(t *testing.T) {
	factory := testutil.NewFakeFactory()
	factory.NewEngine = func(call testutil.FactoryCall) *testutil.FakeEngine {
		return testutil.NewEngineBuilder(string(call.Op)).Seed("abandon ability", 42).Build()
	}
	b := newFakeBridge(factory, testutil.NewFakeResolver(42))

	assert.Equal(t, `{"seed":"abandon ability","birthday":42}`, b.InitializeNew(false, "srv"))
	assert.Equal(t, "OK", b.InitializeNewFromPhrase(false, "srv", "abandon ability", 42))
	assert.Equal(t, "OK", b.InitializeExisting(false, "srv"))

	assert.Equal(t, "load|balance", b.Execute("balance", ""))
	assert.Equal(t, "load|send|addr 5", b.Execute("send", "addr 5"))
}

func TestBridge_FailuresCarryMarker(t *testing.T) {
	resolver := testutil.NewFakeResolver(1)
	resolver.Err = errors.New("connection refused")
	b := newFakeBridge(testutil.NewFakeFactory(), resolver)

	for _, resp := range []string{
		b.InitializeNew(false, "srv"),
		b.InitializeNewFromPhrase(false, "srv", "seed", 1),
		b.InitializeExisting(false, "srv"),
	} {
		assert.Equal(t, "Error: connection refused", resp)
	}
	assert.True(t, IsError(b.Execute("info", "")))
}

func TestBridge_SeedFailureKeepsPreviousSession(t *testing.T) {
	factory := testutil.NewFakeFactory()
	b := newFakeBridge(factory, testutil.NewFakeResolver(1))
	require.Equal(t, "OK", b.InitializeExisting(false, "first"))

	factory.NewEngine = func(testutil.FactoryCall) *testutil.FakeEngine {
		return testutil.NewEngineBuilder("second").SeedErr(errors.New("seed unavailable")).Build()
	}
	assert.Equal(t, "Error: seed unavailable", b.InitializeNew(false, "second"))
	assert.Equal(t, "first|height", b.Execute("height", ""))
}

func TestBridge_WalletExists(t *testing.T) {
	resolver := testutil.NewFakeResolver(1)
	resolver.MarkExisting("main")
	b := newFakeBridge(testutil.NewFakeFactory(), resolver)

	assert.True(t, b.WalletExists("main"))
	assert.False(t, b.WalletExists("test"))
	assert.False(t, b.WalletExists(""))
}

func TestBridge_ReferenceWalletEndToEnd(t *testing.T) {
	b, settings := newWalletBridge(t)

	assert.False(t, b.WalletExists(config.ChainTest))

	created := b.InitializeNew(false, "")
	require.False(t, IsError(created), created)
	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(created), &seed))
	assert.Len(t, strings.Fields(seed.Phrase), 24)
	assert.Equal(t, settings.Height, seed.Birthday)

	assert.True(t, b.WalletExists(config.ChainTest))
	assert.True(t, IsError(b.InitializeNew(false, "")), "second create must fail while a wallet exists")

	addr := b.Execute("new", "z")
	assert.True(t, strings.HasPrefix(addr, `["ztestsapling1`), addr)

	// Reloading the persisted wallet yields the same seed.
	require.Equal(t, "OK", b.InitializeExisting(false, ""))
	assert.Equal(t, created, b.Execute("seed", ""))
	assert.Contains(t, b.Execute("addresses", ""), strings.Trim(addr, `[]"`))

	assert.Equal(t, "Unknown command : nope. Type 'help' for a list of commands", b.Execute("nope", ""))
}

func TestBridge_RestoreThroughBoundary(t *testing.T) {
	source, _ := newWalletBridge(t)
	created := source.InitializeNew(false, "")
	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(created), &seed))

	restored, _ := newWalletBridge(t)
	require.Equal(t, "OK", restored.InitializeNewFromPhrase(false, "", seed.Phrase, seed.Birthday))
	assert.Equal(t, source.Execute("addresses", ""), restored.Execute("addresses", ""))

	other, _ := newWalletBridge(t)
	assert.True(t, IsError(other.InitializeNewFromPhrase(false, "", "too short", 1)))
	assert.True(t, IsError(other.Execute("seed", "")))
}

func TestDefaultBridge(t *testing.T) {
	factory := testutil.NewFakeFactory()
	resolver := testutil.NewFakeResolver(1)
	resolver.MarkExisting("main")

	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(newFakeBridge(factory, resolver))

	assert.True(t, WalletExists("main"))
	assert.True(t, IsError(Execute("info", "")))
	assert.Equal(t, `{"seed":"srv seed","birthday":1}`, InitializeNew(false, "srv"))
	assert.Equal(t, "OK", InitializeNewFromPhrase(false, "srv", "words", 1))
	assert.Equal(t, "OK", InitializeExisting(false, "srv"))
	assert.Equal(t, "srv|info", Execute("info", ""))
}

func TestBridge_RestoredWalletSyncsToServerTip(t *testing.T) {
	source, _ := newWalletBridge(t)
	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(source.InitializeNew(false, "")), &seed))

	restored, settings := newWalletBridge(t)
	require.Equal(t, "OK", restored.InitializeNewFromPhrase(false, "", seed.Phrase, 300000))

	var sync struct {
		Downloaded uint64 `json:"downloaded_blocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(restored.Execute("sync", "")), &sync))
	assert.Equal(t, settings.Height-300000, sync.Downloaded)
}

func TestDefaultBridge_ReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WALLETBRIDGE_DATA_DIR", dir)
	t.Setenv("WALLETBRIDGE_CHAIN", "regtest")
	t.Setenv("WALLETBRIDGE_HEIGHT", "700")

	prev := Default()
	SetDefault(nil)
	t.Cleanup(func() {
		_ = Default().Close()
		SetDefault(prev)
	})

	assert.False(t, WalletExists("regtest"))
	created := InitializeNew(false, "")
	require.False(t, IsError(created), created)

	var seed core.Seed
	require.NoError(t, json.Unmarshal([]byte(created), &seed))
	assert.Equal(t, uint64(700), seed.Birthday)
	assert.FileExists(t, filepath.Join(dir, "regtest", config.WalletFileName))
	assert.True(t, WalletExists("regtest"))
}

func TestEnvironmentSettings_InvalidFallsBackToDefaults(t *testing.T) {
	t.Setenv("WALLETBRIDGE_DATA_DIR", t.TempDir())
	t.Setenv("WALLETBRIDGE_CHAIN", "moon")

	assert.Equal(t, config.DefaultSettings(), environmentSettings(logging.NoOpLogger{}))

	b := New()
	t.Cleanup(func() { _ = b.Close() })
	assert.True(t, IsError(b.Execute("info", "")))
}
