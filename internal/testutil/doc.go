// Package testutil contains fakes and builders used across tests to reduce
// boilerplate when wiring wallet engines, factories and resolvers into the
// bridge. They record calls for assertions and are safe for concurrent use.
// They are not intended for production usage.
package testutil
