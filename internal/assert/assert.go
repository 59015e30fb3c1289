// Package assert checks programmer errors. Checks panic when the module is
// built with the gravel_debug tag and compile to nothing otherwise.
package assert

import "fmt"

// That panics with the formatted message when cond is false and debug
// checks are enabled.
func That(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(fmt.Sprintf("gravel: "+format, args...))
	}
}
