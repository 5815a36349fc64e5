// Package version carries build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"

	"github.com/rbright/voicecmd/internal/packet"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line printed by `voicecmd version`.
func String() string {
	return fmt.Sprintf("voicecmd %s (commit=%s, date=%s, packet-separator=%q, go=%s)",
		Version, Commit, Date, packet.Separator, runtime.Version())
}
