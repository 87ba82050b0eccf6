package utils

import (
	"strings"

	"github.com/mmcloughlin/geohash"
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeLocation converts a position to a geohash string
func EncodeLocation(latitude, longitude float64, precision uint) string {
	return geohash.EncodeWithPrecision(latitude, longitude, precision)
}

// ValidGeohash reports whether hash is a non-empty base32 geohash of at most 12 characters
func ValidGeohash(hash string) bool {
	if hash == "" || len(hash) > 12 {
		return false
	}
	for _, r := range hash {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return false
		}
	}
	return true
}

// InCell reports whether the position falls inside the geohash cell prefix
func InCell(latitude, longitude float64, prefix string) bool {
	prefix = strings.ToLower(prefix)
	box := geohash.BoundingBox(prefix)
	return box.Contains(latitude, longitude)
}

// GetNeighbors returns the neighboring geohashes of a given geohash
func GetNeighbors(hash string) []string {
	return geohash.Neighbors(hash)
}
