// Package debug logs protocol traffic when WAYLAND_DEBUG is set to 1,
// client or all, the same values that libwayland accepts.
package debug

import (
	"log"
	"os"
	"strconv"
)

var enabled = parse(os.Getenv("WAYLAND_DEBUG"))

func parse(v string) bool {
	switch v {
	case "client", "all":
		return true
	}

	level, err := strconv.ParseInt(v, 10, 0)
	return (err == nil) && (level > 0)
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	return enabled
}

func Printf(format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf("[wayland] "+format, args...)
}
