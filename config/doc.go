// Package config resolves wallet configuration. Settings are read from an
// optional YAML file (with ${VAR} expansion) and then overridden from
// WALLETBRIDGE_* environment variables. Resolver implements
// core.ConfigResolver on top of Settings and a ChainInfoSource.
package config
