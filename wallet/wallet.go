package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/logging"
)

// ErrLocked is returned when an operation needs key material of an
// encrypted wallet that has not been unlocked.
var ErrLocked = errors.New("wallet is locked")

// Wallet is the reference core.WalletEngine backed by a SQLite file.
//
// A Wallet is safe for concurrent use: read-only commands share a read lock,
// mutating commands take the write lock.
type Wallet struct {
	mu sync.RWMutex

	cfg    core.WalletConfig
	store  *store
	logger logging.Logger
	rand   io.Reader

	rec     record
	entropy []byte // nil while locked
	master  []byte
	addrs   []address

	diag   *os.File
	closed bool
}

var (
	_ core.WalletEngine = (*Wallet)(nil)
	_ io.Closer         = (*Wallet)(nil)
)

func newWallet(cfg core.WalletConfig, st *store, rec record, addrs []address, logger logging.Logger, rnd io.Reader) (*Wallet, error) {
	w := &Wallet{
		cfg:    cfg,
		store:  st,
		logger: logger,
		rand:   rnd,
		rec:    rec,
		addrs:  addrs,
	}
	if !rec.Encrypted {
		if err := w.setEntropy(rec.Seed); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Wallet) setEntropy(entropy []byte) error {
	master, err := masterKey(entropy)
	if err != nil {
		return err
	}
	w.entropy = append([]byte(nil), entropy...)
	w.master = master
	return nil
}

func (w *Wallet) wipeKeys() {
	for i := range w.entropy {
		w.entropy[i] = 0
	}
	for i := range w.master {
		w.master[i] = 0
	}
	w.entropy, w.master = nil, nil
}

// InitDiagnostics redirects the wallet's own logging into the debug log file
// named by the wallet configuration.
func (w *Wallet) InitDiagnostics() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cfg.LogPath == "" {
		return errors.New("no diagnostics log path configured")
	}
	if w.diag != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.cfg.LogPath), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(w.cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open diagnostics log: %w", err)
	}
	w.diag = f
	w.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevelDebug,
		Format:    "text",
		Output:    f,
		Component: "wallet",
	})
	w.logger.Info("diagnostics initialized", "chain", w.cfg.ChainName, "birthday", w.rec.Birthday)
	return nil
}

// SeedPhrase returns the backup phrase and birthday.
func (w *Wallet) SeedPhrase() (core.Seed, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.seedLocked()
}

func (w *Wallet) seedLocked() (core.Seed, error) {
	if w.closed {
		return core.Seed{}, errClosed
	}
	if w.entropy == nil {
		return core.Seed{}, ErrLocked
	}
	phrase, err := encodePhrase(w.entropy)
	if err != nil {
		return core.Seed{}, err
	}
	return core.Seed{Phrase: phrase, Birthday: w.rec.Birthday}, nil
}

// RunCommand executes name with args. Args carry at most one raw string,
// which is split on whitespace.
func (w *Wallet) RunCommand(ctx context.Context, name string, args []string) string {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command : %s. Type 'help' for a list of commands", name)
	}
	if cmd.mutates {
		w.mu.Lock()
		defer w.mu.Unlock()
	} else {
		w.mu.RLock()
		defer w.mu.RUnlock()
	}
	if w.closed {
		return errorResponse(errClosed)
	}

	w.logger.Debug("running command", "command", name)
	return cmd.run(ctx, w, splitArgs(args))
}

var errClosed = errors.New("wallet is closed")

// Close persists the wallet and releases its database and log file.
// Closing twice is a no-op.
func (w *Wallet) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.wipeKeys()

	err := w.store.save(context.Background(), w.rec)
	err = errors.Join(err, w.store.Close())
	if w.diag != nil {
		err = errors.Join(err, w.diag.Close())
	}
	return err
}
