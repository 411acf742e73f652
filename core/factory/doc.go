// Package factory provides a small generic registry used to build
// pluggable backends from configuration. A backend is described by a type
// string and a map of raw settings; builders decode the settings into
// typed structs and return the concrete implementation. Metric sinks are
// built this way.
package factory
