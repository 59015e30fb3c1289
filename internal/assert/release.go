//go:build !gravel_debug

package assert

// Enabled reports whether assertions are checked.
const Enabled = false
