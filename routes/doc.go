// Package routes supplies the static route and stop reference data
// used when estimating arrivals. The data is read-only input: nothing
// in the tracker mutates it, and the registry never depends on it.
package routes
