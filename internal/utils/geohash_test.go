package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLocation(t *testing.T) {
	hash := EncodeLocation(-6.175392, 106.827153, 6)

	assert.Len(t, hash, 6)
	assert.True(t, ValidGeohash(hash))
}

func TestValidGeohash(t *testing.T) {
	tests := []struct {
		hash string
		want bool
	}{
		{"qqguf", true},
		{"QQGUF", false},
		{"", false},
		{"abc", false},
		{"qqgufqqgufqqg", false},
	}

	for _, tt := range tests {
		t.Run(tt.hash, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidGeohash(tt.hash))
		})
	}
}

func TestInCell(t *testing.T) {
	lat, lng := 12.9716, 77.5946
	cell := EncodeLocation(lat, lng, 5)

	assert.True(t, InCell(lat, lng, cell))
	assert.True(t, InCell(lat, lng, cell[:3]))
	assert.False(t, InCell(-6.175392, 106.827153, cell))
}

func TestGetNeighbors(t *testing.T) {
	neighbors := GetNeighbors("qqguf")

	assert.Len(t, neighbors, 8)
	assert.NotContains(t, neighbors, "qqguf")
}
