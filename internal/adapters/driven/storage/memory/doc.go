// Package memory provides in-memory implementations of driven ports.
// They mirror the SQLite staging store and TOML config store contracts
// and are used as deterministic fakes in tests.
package memory
