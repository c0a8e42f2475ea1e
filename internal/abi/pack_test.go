package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{
			name:   "typical values",
			ptr:    0x12345678,
			length: 0xABCDEF00,
			want:   (uint64(0x12345678) << PtrHighBits) | uint64(0xABCDEF00),
		},
		{
			name:   "zero pointer zero length",
			ptr:    0,
			length: 0,
			want:   0,
		},
		{
			name:   "max pointer",
			ptr:    0xFFFFFFFF,
			length: 1,
			want:   (uint64(0xFFFFFFFF) << PtrHighBits) | 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed, "packed value mismatch")

			gotPtr, gotLen := UnpackPtrLen(packed)
			assert.Equal(t, tt.ptr, gotPtr, "unpacked pointer mismatch")
			assert.Equal(t, tt.length, gotLen, "unpacked length mismatch")
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		PackPtrLen(0, 100)
	}, "expected panic for null pointer with non-zero length")
}

func TestUnpackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		UnpackPtrLen(100)
	}, "expected panic for null pointer with non-zero length")
}
