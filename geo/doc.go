// Package geo provides pure geospatial estimation: great-circle
// distance between coordinates, speed-based arrival estimates, and
// display formatting for those estimates.
//
// Nothing in this package reads or writes shared state; every function
// is a plain computation over its arguments.
package geo
