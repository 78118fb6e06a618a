package mir

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the textual form of the module. Two modules with the
// same fingerprint print identically.
func Fingerprint(mod *Module) uint64 {
	return xxhash.Sum64String(FormatModule(mod))
}
