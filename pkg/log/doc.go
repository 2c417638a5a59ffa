// Package log provides the logging abstraction used by hostbeat components.
//
// Components accept a Logger and never import a concrete logging library.
// The command wires a zerolog-backed adapter; tests pass the no-op logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	rep := report.New(os.Stdout, report.WithLogger(logger))
//
// Diagnostics written through a Logger belong on stderr. Stdout is reserved
// for the report itself.
package log
