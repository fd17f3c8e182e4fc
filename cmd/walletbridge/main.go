// Walletbridge is an interactive shell over the wallet bridge. It loads the
// persisted wallet for the configured chain (or restores or creates one) and
// then forwards every input line to the wallet as a command.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: walletbridge [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}

	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "path to YAML configuration file")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	flag.StringVar(&opts.server, "server", "", "light wallet server URI (default from config)")
	flag.StringVar(&opts.chain, "chain", "", "chain name: main, test or regtest (default from config)")
	flag.StringVar(&opts.dataDir, "data-dir", "", "wallet data directory (default from config)")
	flag.BoolVar(&opts.dangerous, "dangerous", false, "accept invalid TLS certificates")
	flag.StringVar(&opts.seed, "seed", "", "restore from this seed phrase when no wallet exists")
	flag.Uint64Var(&opts.birthday, "birthday", 0, "birthday height used with -seed")
	flag.Uint64Var(&opts.height, "height", 0, "latest block height reported by the offline chain source")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
