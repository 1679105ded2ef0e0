package fieldtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConcreteDescriptors(t *testing.T) {
	tests := []struct {
		name  string
		byte  byte
		major Major
		arr   Array
	}{
		{name: "int scalar", byte: 0x22, major: Integer, arr: Scalar},
		{name: "int fixed array", byte: 0x38, major: Integer, arr: FixedArray},
		{name: "structure scalar", byte: 0x80, major: Complex, arr: Scalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.byte)
			require.NoError(t, err)
			assert.Equal(t, tt.major, d.Major)
			assert.Equal(t, tt.arr, d.Array)
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		d, err := Decode(byte(b))
		if err != nil {
			continue
		}
		assert.Equal(t, byte(b), Encode(d), "byte 0x%02X", b)
	}
}

func TestDecodeRejectsReservedFloatSub(t *testing.T) {
	// major=Float (010), arr=Scalar (00), sub=000 is not binary32/binary64.
	b := byte(Float)<<5 | byte(Scalar)<<3 | 0b000
	_, err := Decode(b)
	assert.ErrorIs(t, err, ErrReserved)
}

func TestDecodeRejectsReservedComplexSub(t *testing.T) {
	b := byte(Complex)<<5 | byte(Scalar)<<3 | 0b111
	_, err := Decode(b)
	assert.ErrorIs(t, err, ErrReserved)
}

func TestDecodeRejectsReservedMajor(t *testing.T) {
	b := byte(0b101) << 5
	_, err := Decode(b)
	assert.ErrorIs(t, err, ErrReserved)
}

func TestIntegerSubFields(t *testing.T) {
	d, err := Decode(0x22)
	require.NoError(t, err)
	assert.False(t, d.Unsigned())
	assert.Equal(t, IntInt, d.IntegerSize())

	unsignedLong := byte(Integer)<<5 | byte(Scalar)<<3 | integerUnsignedBit | IntLong
	d2, err := Decode(unsignedLong)
	require.NoError(t, err)
	assert.True(t, d2.Unsigned())
	assert.Equal(t, IntLong, d2.IntegerSize())
}

func TestIsDescriptorByte(t *testing.T) {
	assert.False(t, IsDescriptorByte(EncodingNull))
	assert.False(t, IsDescriptorByte(EncodingOnlyID))
	assert.False(t, IsDescriptorByte(EncodingFullID))
	assert.False(t, IsDescriptorByte(EncodingFullTaggedID))
	assert.True(t, IsDescriptorByte(0x22))
}
