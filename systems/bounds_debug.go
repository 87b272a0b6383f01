//go:build debug

package systems

// boundsChecks enables coordinate validation on every field access.
const boundsChecks = true
