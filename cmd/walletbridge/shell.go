package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/hupe1980/walletbridge"
	"github.com/hupe1980/walletbridge/config"
	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/logging"
)

type cliOptions struct {
	configPath string
	server     string
	chain      string
	dataDir    string
	dangerous  bool
	seed       string
	birthday   uint64
	height     uint64
	logLevel   string
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// settingsFor loads the configuration file and applies flag overrides.
func settingsFor(opts cliOptions) (config.Settings, error) {
	s, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.server != "" {
		s.Server = opts.server
	}
	if opts.chain != "" {
		s.Chain = opts.chain
	}
	if opts.dataDir != "" {
		s.DataDir = opts.dataDir
	}
	if opts.height != 0 {
		s.Height = opts.height
	}
	if opts.logLevel != "" {
		s.LogLevel = opts.logLevel
	}
	return s, s.Validate()
}

// parseLine splits an input line into the command name and the raw
// remainder, which is passed to the wallet unchanged.
func parseLine(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ = strings.Cut(line, " ")
	return cmd, strings.TrimSpace(arg)
}

func failure(resp string) error {
	return errors.New(strings.TrimPrefix(resp, core.ErrorMarker))
}

func run(opts cliOptions, in io.Reader, out, errOut io.Writer) error {
	settings, err := settingsFor(opts)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    settings.LogFormat,
		Output:    errOut,
		Component: "cli",
	})

	bridge := walletbridge.New(func(o *walletbridge.Options) {
		o.Resolver = config.NewResolver(settings, nil)
		o.Logger = logger
		o.EngineConfig.SerializeCommands = settings.SerializeCommands
	})
	defer func() { _ = bridge.Close() }()

	startupDone := logger.StartTimer("startup")
	switch {
	case bridge.WalletExists(settings.Chain):
		if resp := bridge.InitializeExisting(opts.dangerous, opts.server); walletbridge.IsError(resp) {
			return failure(resp)
		}
	case opts.seed != "":
		if resp := bridge.InitializeNewFromPhrase(opts.dangerous, opts.server, opts.seed, opts.birthday); walletbridge.IsError(resp) {
			return failure(resp)
		}
		fmt.Fprintln(out, "Wallet restored from seed.")
	default:
		resp := bridge.InitializeNew(opts.dangerous, opts.server)
		if walletbridge.IsError(resp) {
			return failure(resp)
		}
		fmt.Fprintln(out, "New wallet created. Write down the seed below; it is the only way to recover funds.")
		fmt.Fprintln(out, resp)
	}
	startupDone()

	return repl(bridge, settings.Chain, in, out)
}

func repl(bridge *walletbridge.Bridge, chain string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "(%s) >> ", chain)
		if !scanner.Scan() {
			break
		}
		cmd, arg := parseLine(scanner.Text())
		if cmd == "" {
			continue
		}

		if cmd == "qr" {
			printAddressQR(bridge, arg, out)
			continue
		}

		fmt.Fprintln(out, bridge.Execute(cmd, arg))
		if cmd == "quit" {
			return nil
		}
	}
	fmt.Fprintln(out)

	// Input ended without quit; persist before exiting.
	if resp := bridge.Execute("save", ""); walletbridge.IsError(resp) {
		return failure(resp)
	}
	return scanner.Err()
}

// printAddressQR renders the first receive address of kind (z by default) as
// a terminal QR code. It is handled by the shell, not the wallet.
func printAddressQR(bridge *walletbridge.Bridge, kind string, out io.Writer) {
	resp := bridge.Execute("addresses", "")
	if walletbridge.IsError(resp) {
		fmt.Fprintln(out, resp)
		return
	}

	var addrs struct {
		Z []string `json:"z_addresses"`
		T []string `json:"t_addresses"`
	}
	if err := json.Unmarshal([]byte(resp), &addrs); err != nil {
		fmt.Fprintf(out, "%sunexpected addresses response: %v\n", core.ErrorMarker, err)
		return
	}

	list := addrs.Z
	if kind == "t" {
		list = addrs.T
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "%sno %s-address in wallet\n", core.ErrorMarker, kind)
		return
	}

	qr, err := qrcode.New(list[0], qrcode.Medium)
	if err != nil {
		fmt.Fprintf(out, "%s%v\n", core.ErrorMarker, err)
		return
	}
	fmt.Fprintln(out, qr.ToSmallString(false))
	fmt.Fprintln(out, list[0])
}
