package wallet

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/logging"
)

// Options configures a Factory.
type Options struct {
	// Logger receives wallet logs until diagnostics are initialized.
	// Defaults to a no-op logger.
	Logger logging.Logger

	// Rand is the entropy source for new seeds and encryption nonces.
	// Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Factory is the reference core.EngineFactory producing SQLite-backed wallets.
type Factory struct {
	logger logging.Logger
	rand   io.Reader
}

var _ core.EngineFactory = (*Factory)(nil)

// NewFactory creates a Factory.
//
// Example:
//
//	factory := wallet.NewFactory(func(o *wallet.Options) {
//	    o.Logger = logger
//	})
func NewFactory(optFns ...func(o *Options)) *Factory {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Rand:   rand.Reader,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}
	return &Factory{logger: opts.Logger, rand: opts.Rand}
}

// CreateNew generates fresh seed entropy and persists a new wallet whose
// birthday is the latest block height.
func (f *Factory) CreateNew(ctx context.Context, cfg core.WalletConfig, latestHeight uint64) (core.WalletEngine, error) {
	entropy := make([]byte, entropySize)
	if _, err := io.ReadFull(f.rand, entropy); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	birthday := max(latestHeight, cfg.SaplingActivation)
	w, err := f.create(ctx, cfg, entropy, birthday, latestHeight)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Restore rebuilds a wallet from a seed phrase. Birthdays below the sapling
// activation height are raised to it. The blocks between the birthday and
// cfg.LatestHeight are left to sync.
func (f *Factory) Restore(ctx context.Context, seed string, cfg core.WalletConfig, birthday uint64) (core.WalletEngine, error) {
	entropy, err := decodePhrase(seed)
	if err != nil {
		return nil, err
	}
	birthday = max(birthday, cfg.SaplingActivation)
	w, err := f.create(ctx, cfg, entropy, birthday, cfg.LatestHeight)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Load opens the wallet persisted at cfg.WalletPath. A chain tip in cfg
// above the persisted one is adopted.
func (f *Factory) Load(ctx context.Context, cfg core.WalletConfig) (core.WalletEngine, error) {
	if !exists(cfg.WalletPath) {
		return nil, fmt.Errorf("no wallet found at %q", cfg.WalletPath)
	}
	st, err := openStore(ctx, cfg.WalletPath)
	if err != nil {
		return nil, err
	}

	rec, err := st.load(ctx)
	if err == nil && rec.Chain != cfg.ChainName {
		err = fmt.Errorf("wallet belongs to chain %q, not %q", rec.Chain, cfg.ChainName)
	}
	var addrs []address
	if err == nil {
		addrs, err = st.addresses(ctx)
	}
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	rec.LatestHeight = max(rec.LatestHeight, cfg.LatestHeight)

	w, err := newWallet(cfg, st, rec, addrs, f.logger, f.rand)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	f.logger.Info("wallet loaded", "chain", rec.Chain, "birthday", rec.Birthday, "encrypted", rec.Encrypted)
	return w, nil
}

func (f *Factory) create(ctx context.Context, cfg core.WalletConfig, entropy []byte, birthday, latest uint64) (*Wallet, error) {
	if exists(cfg.WalletPath) {
		return nil, fmt.Errorf("cannot create a new wallet because one already exists at %q", cfg.WalletPath)
	}

	master, err := masterKey(entropy)
	if err != nil {
		return nil, err
	}
	var addrs []address
	for _, kind := range []AddressKind{KindShielded, KindTransparent} {
		addr, err := deriveAddress(master, cfg.ChainName, kind, 0)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, address{Kind: kind, Index: 0, Address: addr})
	}

	rec := record{
		Chain:         cfg.ChainName,
		Birthday:      birthday,
		ScannedHeight: birthday,
		LatestHeight:  max(latest, birthday),
		Seed:          entropy,
		CreatedAt:     time.Now().UTC(),
	}

	st, err := openStore(ctx, cfg.WalletPath)
	if err != nil {
		return nil, err
	}
	if err := st.create(ctx, rec, addrs); err != nil {
		discard(st, cfg.WalletPath)
		return nil, err
	}

	w, err := newWallet(cfg, st, rec, addrs, f.logger, f.rand)
	if err != nil {
		discard(st, cfg.WalletPath)
		return nil, err
	}
	f.logger.Info("wallet created", "chain", rec.Chain, "birthday", birthday)
	return w, nil
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// discard removes a partially created wallet file.
func discard(st *store, path string) {
	_ = st.Close()
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
}
