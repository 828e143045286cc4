// Package watch implements the terminal live-tracking client: it polls
// the tracker API for one bus, renders a per-stop distance/ETA table,
// and falls back to a clearly labeled simulated trajectory while the
// server is unreachable.
package watch
