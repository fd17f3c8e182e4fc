package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Version is reported by the info command.
const Version = "1.0.0"

type command struct {
	help    string
	mutates bool
	run     func(ctx context.Context, w *Wallet, args []string) string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":             {help: "List all available commands", run: cmdHelp},
		"info":             {help: "Get the wallet and chain info", run: cmdInfo},
		"height":           {help: "Get the latest block height the wallet is at", run: cmdHeight},
		"syncstatus":       {help: "Get the sync status of the wallet", run: cmdSyncStatus},
		"sync":             {help: "Download and scan blocks up to the latest height", mutates: true, run: cmdSync},
		"rescan":           {help: "Rescan the chain from the wallet birthday", mutates: true, run: cmdRescan},
		"clear":            {help: "Clear the scanned state back to the birthday", mutates: true, run: cmdClear},
		"balance":          {help: "Show the balance of all addresses", run: cmdBalance},
		"addresses":        {help: "List all addresses in the wallet", run: cmdAddresses},
		"new":              {help: "Create a new address: new z|t", mutates: true, run: cmdNew},
		"seed":             {help: "Display the seed phrase", run: cmdSeed},
		"save":             {help: "Save the wallet file to disk", run: cmdSave},
		"encryptionstatus": {help: "Check if the wallet is encrypted and locked", run: cmdEncryptionStatus},
		"encrypt":          {help: "Encrypt the wallet with a password: encrypt <password>", mutates: true, run: cmdEncrypt},
		"decrypt":          {help: "Remove wallet encryption permanently: decrypt <password>", mutates: true, run: cmdDecrypt},
		"unlock":           {help: "Unlock the wallet for spending: unlock <password>", mutates: true, run: cmdUnlock},
		"lock":             {help: "Lock an encrypted wallet", mutates: true, run: cmdLock},
		"quit":             {help: "Save the wallet and quit", run: cmdSave},
	}
}

// Commands returns the sorted names of all supported commands.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitArgs(args []string) []string {
	return strings.Fields(strings.Join(args, " "))
}

func jsonResponse(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return errorResponse(err)
	}
	return string(b)
}

func errorResponse(err error) string {
	b, _ := json.Marshal(map[string]string{"result": "error", "error": err.Error()})
	return string(b)
}

func successResponse() string {
	return `{"result":"success"}`
}

func cmdHelp(_ context.Context, _ *Wallet, args []string) string {
	if len(args) == 1 {
		if c, ok := commands[args[0]]; ok {
			return c.help
		}
		return fmt.Sprintf("Command %s not found", args[0])
	}
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range Commands() {
		fmt.Fprintf(&b, "%s - %s\n", name, commands[name].help)
	}
	return b.String()
}

func cmdInfo(_ context.Context, w *Wallet, _ []string) string {
	return jsonResponse(map[string]any{
		"version":             Version,
		"chain_name":          w.cfg.ChainName,
		"server":              w.cfg.Server,
		"sapling_activation":  w.cfg.SaplingActivation,
		"latest_block_height": w.rec.LatestHeight,
		"wallet_birthday":     w.rec.Birthday,
	})
}

func cmdHeight(_ context.Context, w *Wallet, _ []string) string {
	return jsonResponse(map[string]uint64{"height": w.rec.ScannedHeight})
}

func cmdSyncStatus(_ context.Context, w *Wallet, _ []string) string {
	return jsonResponse(map[string]any{
		"syncing":       w.rec.ScannedHeight < w.rec.LatestHeight,
		"synced_blocks": w.rec.ScannedHeight - w.rec.Birthday,
		"total_blocks":  w.rec.LatestHeight - w.rec.Birthday,
	})
}

func cmdSync(ctx context.Context, w *Wallet, _ []string) string {
	if err := ctx.Err(); err != nil {
		return errorResponse(err)
	}
	scanned := w.rec.LatestHeight - w.rec.ScannedHeight
	w.rec.ScannedHeight = w.rec.LatestHeight
	return jsonResponse(map[string]any{"result": "success", "latest_block": w.rec.ScannedHeight, "downloaded_blocks": scanned})
}

func cmdRescan(ctx context.Context, w *Wallet, args []string) string {
	w.rec.ScannedHeight = w.rec.Birthday
	return cmdSync(ctx, w, args)
}

func cmdClear(_ context.Context, w *Wallet, _ []string) string {
	w.rec.ScannedHeight = w.rec.Birthday
	return successResponse()
}

type addressBalance struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// cmdBalance reports zero balances: the reference wallet observes no notes.
func cmdBalance(_ context.Context, w *Wallet, _ []string) string {
	z, t := []addressBalance{}, []addressBalance{}
	for _, a := range w.addrs {
		if a.Kind == KindShielded {
			z = append(z, addressBalance{Address: a.Address})
		} else {
			t = append(t, addressBalance{Address: a.Address})
		}
	}
	return jsonResponse(map[string]any{
		"zbalance":          0,
		"verified_zbalance": 0,
		"tbalance":          0,
		"z_addresses":       z,
		"t_addresses":       t,
	})
}

func cmdAddresses(_ context.Context, w *Wallet, _ []string) string {
	z, t := []string{}, []string{}
	for _, a := range w.addrs {
		if a.Kind == KindShielded {
			z = append(z, a.Address)
		} else {
			t = append(t, a.Address)
		}
	}
	return jsonResponse(map[string][]string{"z_addresses": z, "t_addresses": t})
}

func cmdNew(ctx context.Context, w *Wallet, args []string) string {
	if len(args) != 1 {
		return errorResponse(fmt.Errorf("usage: new z|t"))
	}
	kind := AddressKind(args[0])
	if kind != KindShielded && kind != KindTransparent {
		return errorResponse(fmt.Errorf("unrecognized address type %q", args[0]))
	}
	if w.master == nil {
		return errorResponse(ErrLocked)
	}

	var next uint32
	for _, a := range w.addrs {
		if a.Kind == kind {
			next++
		}
	}
	addr, err := deriveAddress(w.master, w.rec.Chain, kind, next)
	if err != nil {
		return errorResponse(err)
	}
	a := address{Kind: kind, Index: next, Address: addr}
	if err := w.store.addAddress(ctx, a); err != nil {
		return errorResponse(err)
	}
	w.addrs = append(w.addrs, a)
	w.logger.Info("address created", "kind", string(kind), "index", next)

	return jsonResponse([]string{addr})
}

func cmdSeed(_ context.Context, w *Wallet, _ []string) string {
	seed, err := w.seedLocked()
	if err != nil {
		return errorResponse(err)
	}
	return seed.Dump()
}

func cmdSave(ctx context.Context, w *Wallet, _ []string) string {
	if err := w.store.save(ctx, w.rec); err != nil {
		return errorResponse(err)
	}
	return successResponse()
}

func cmdEncryptionStatus(_ context.Context, w *Wallet, _ []string) string {
	return jsonResponse(map[string]bool{
		"encrypted": w.rec.Encrypted,
		"locked":    w.rec.Encrypted && w.entropy == nil,
	})
}

func password(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("a single password argument is required")
	}
	return args[0], nil
}

// cmdEncrypt seals the seed under a password and leaves the wallet locked.
func cmdEncrypt(ctx context.Context, w *Wallet, args []string) string {
	pw, err := password(args)
	if err != nil {
		return errorResponse(err)
	}
	if w.rec.Encrypted {
		return errorResponse(fmt.Errorf("wallet is already encrypted"))
	}

	s, err := seal(w.rand, pw, w.entropy)
	if err != nil {
		return errorResponse(err)
	}
	rec := w.rec
	rec.Seed, rec.Salt, rec.Nonce, rec.Encrypted = s.box, s.salt, s.nonce, true
	if err := w.store.save(ctx, rec); err != nil {
		return errorResponse(err)
	}
	w.rec = rec
	w.wipeKeys()
	w.logger.Info("wallet encrypted")

	return successResponse()
}

func (w *Wallet) openSeed(args []string) ([]byte, string) {
	pw, err := password(args)
	if err != nil {
		return nil, errorResponse(err)
	}
	if !w.rec.Encrypted {
		return nil, errorResponse(fmt.Errorf("wallet is not encrypted"))
	}
	entropy, err := open(sealed{box: w.rec.Seed, salt: w.rec.Salt, nonce: w.rec.Nonce}, pw)
	if err != nil {
		return nil, errorResponse(err)
	}
	return entropy, ""
}

// cmdDecrypt removes encryption and stores the seed in the clear again.
func cmdDecrypt(ctx context.Context, w *Wallet, args []string) string {
	entropy, failure := w.openSeed(args)
	if failure != "" {
		return failure
	}

	rec := w.rec
	rec.Seed, rec.Salt, rec.Nonce, rec.Encrypted = entropy, nil, nil, false
	if err := w.store.save(ctx, rec); err != nil {
		return errorResponse(err)
	}
	w.rec = rec
	if err := w.setEntropy(entropy); err != nil {
		return errorResponse(err)
	}
	w.logger.Info("wallet decrypted")

	return successResponse()
}

func cmdUnlock(_ context.Context, w *Wallet, args []string) string {
	entropy, failure := w.openSeed(args)
	if failure != "" {
		return failure
	}
	if err := w.setEntropy(entropy); err != nil {
		return errorResponse(err)
	}
	return successResponse()
}

func cmdLock(_ context.Context, w *Wallet, _ []string) string {
	if !w.rec.Encrypted {
		return errorResponse(fmt.Errorf("wallet is not encrypted"))
	}
	w.wipeKeys()
	return successResponse()
}
