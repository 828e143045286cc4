// Package registry holds the authoritative in-memory latest-state
// store for bus tracking devices.
//
// Each device id maps to at most one LocationRecord. An update replaces
// the previous record in full (latest write wins, no field merge), and
// records live for the process lifetime; there is no delete. Readers
// always observe a complete record, never a partially applied update.
package registry
