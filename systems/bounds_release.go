//go:build !debug

package systems

const boundsChecks = false
