package introspect

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-pva/internal/fieldtype"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

func longField() fieldtype.DataType {
	return fieldtype.DataType{Major: fieldtype.Integer, Array: fieldtype.Scalar, Sub: fieldtype.IntLong}
}

func intField() fieldtype.DataType {
	return fieldtype.DataType{Major: fieldtype.Integer, Array: fieldtype.Scalar, Sub: fieldtype.IntInt}
}

func timeStampT() *DataObject {
	return &DataObject{
		Type: fieldtype.DataType{Major: fieldtype.Complex, Array: fieldtype.Scalar, Sub: fieldtype.Structure},
		Name: []byte("timeStamp_t"),
		Size: 3,
		Fields: []Field{
			{Name: []byte("secondsPastEpoch"), Child: &DataObject{Type: longField()}},
			{Name: []byte("nanoSeconds"), Child: &DataObject{Type: intField()}},
			{Name: []byte("userTag"), Child: &DataObject{Type: intField()}},
		},
	}
}

func TestTimeStampTRoundTrip(t *testing.T) {
	obj := timeStampT()

	w := pvabuf.NewWriter(binary.LittleEndian)
	encReg := NewRegistry()
	require.NoError(t, Encode(w, obj, encReg))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	decReg := NewRegistry()
	got, err := Decode(r, decReg)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "timeStamp_t", string(got.Name))
	assert.Equal(t, uint32(3), got.Size)
	require.Len(t, got.Fields, 3)
	assert.Equal(t, "secondsPastEpoch", string(got.Fields[0].Name))
	assert.Equal(t, longField(), got.Fields[0].Child.Type)
	assert.Equal(t, "nanoSeconds", string(got.Fields[1].Name))
	assert.Equal(t, intField(), got.Fields[1].Child.Type)
	assert.Equal(t, "userTag", string(got.Fields[2].Name))
	assert.Equal(t, intField(), got.Fields[2].Child.Type)
	assert.Equal(t, 0, r.Len())
}

func TestOnlyIDBackReferenceResolvesToSameObject(t *testing.T) {
	obj := timeStampT()

	w := pvabuf.NewWriter(binary.LittleEndian)
	encReg := NewRegistry()
	require.NoError(t, Encode(w, obj, encReg))
	require.NoError(t, Encode(w, obj, encReg))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	decReg := NewRegistry()

	first, err := Decode(r, decReg)
	require.NoError(t, err)
	second, err := Decode(r, decReg)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestDecodeOnlyIDMissingFails(t *testing.T) {
	w := pvabuf.NewWriter(binary.LittleEndian)
	w.U8(fieldtype.EncodingOnlyID)
	w.U16(42)

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	_, err := Decode(r, NewRegistry())
	assert.ErrorIs(t, err, ErrUnknownTypeID)
}

func TestDecodeNull(t *testing.T) {
	r := pvabuf.NewReader([]byte{fieldtype.EncodingNull}, binary.LittleEndian)
	obj, err := Decode(r, NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestEncodeNull(t *testing.T) {
	w := pvabuf.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, nil, NewRegistry()))
	assert.Equal(t, []byte{fieldtype.EncodingNull}, w.Bytes())
}

func TestPrimitiveScalarRoundTrip(t *testing.T) {
	obj := &DataObject{Type: intField()}

	w := pvabuf.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, obj, NewRegistry()))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := Decode(r, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, obj.Type, got.Type)
	assert.Equal(t, uint32(0), got.Size)
}

func TestFixedArrayOfPrimitiveCarriesSize(t *testing.T) {
	obj := &DataObject{
		Type: fieldtype.DataType{Major: fieldtype.Integer, Array: fieldtype.FixedArray, Sub: fieldtype.IntByte},
		Size: 10,
	}

	w := pvabuf.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, obj, NewRegistry()))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := Decode(r, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, uint32(10), got.Size)
}

func TestBoundedStringRoundTrip(t *testing.T) {
	obj := &DataObject{
		Type: fieldtype.DataType{Major: fieldtype.Complex, Array: fieldtype.Scalar, Sub: fieldtype.BoundedString},
		Name: []byte("shortString"),
		Size: 40,
	}

	w := pvabuf.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, obj, NewRegistry()))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := Decode(r, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "shortString", string(got.Name))
	assert.Equal(t, uint32(40), got.Size)
}

func TestVariantUnionRoundTrip(t *testing.T) {
	obj := &DataObject{
		Type: fieldtype.DataType{Major: fieldtype.Complex, Array: fieldtype.Scalar, Sub: fieldtype.VariantUnion},
	}

	w := pvabuf.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, obj, NewRegistry()))

	r := pvabuf.NewReader(w.Bytes(), binary.LittleEndian)
	got, err := Decode(r, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, obj.Type, got.Type)
}
