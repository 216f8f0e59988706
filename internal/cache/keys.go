package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// Key namespaces. The format <prefix>_<hash> is an internal convention,
// not a wire protocol.
const (
	localPrefix  = "local_vin"
	nhtsaPrefix  = "nhtsa_api"
	mergedPrefix = "vin_data"

	learnedWMIPrefix = "local_vin_wmi"
)

// Hash returns the stable 16-hex-digit digest of a normalized identifier
// used in cache keys.
func Hash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// LocalKey is the cache key for a locally decoded record.
func LocalKey(id vehicle.Identifier) string {
	return localPrefix + "_" + Hash(id.String())
}

// NHTSAKey is the cache key for a raw NHTSA source result.
func NHTSAKey(id vehicle.Identifier) string {
	return nhtsaPrefix + "_" + Hash(id.String())
}

// MergedKey is the cache key for the merged, authoritative record.
func MergedKey(id vehicle.Identifier) string {
	return mergedPrefix + "_" + Hash(id.String())
}

// LearnedWMIKey is the persistence key for one learned WMI entry. It lives
// in the local namespace and keeps the WMI readable for debugging.
func LearnedWMIKey(wmi string) string {
	return learnedWMIPrefix + "_" + wmi
}
