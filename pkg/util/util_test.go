package util

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseG(t *testing.T) {
	arr := []int{1, 2, 3, 4}
	reversed := ReverseG(arr)

	assert.Equal(t, []int{4, 3, 2, 1}, reversed)
	assert.Equal(t, []int{1, 2, 3, 4}, arr, "input must not be modified")
	assert.Empty(t, ReverseG([]int{}))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 0.123, RoundFloat(0.12345, 3))
	assert.Equal(t, 1.0, RoundFloat(0.9999999, 4))
}

func TestBitPacking(t *testing.T) {
	var buf [4]byte
	packed := int32(125)
	packed = BitPackInt(packed, int32(4), 8)
	packed = BitPackIntBool(packed, false, 20)
	packed = BitPackIntBool(packed, true, 21)
	packed = BitPackIntBool(packed, true, 30)

	binary.LittleEndian.PutUint32(buf[:], uint32(packed))
	unpacked := int32(binary.LittleEndian.Uint32(buf[:]))

	low, high := BitUnpackInt(unpacked&bitmask[12], 8)
	assert.Equal(t, int32(125), low)
	assert.Equal(t, int32(4), high)

	_, flag20 := BitUnpackIntBool(unpacked, 20)
	assert.False(t, flag20)
	_, flag21 := BitUnpackIntBool(unpacked, 21)
	assert.True(t, flag21)
	_, flag30 := BitUnpackIntBool(unpacked, 30)
	assert.True(t, flag30)
}
