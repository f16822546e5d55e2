package buffer

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type serializer interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	BinarySize() int
}

// RequireSerializerCorrect checks that the serialization interface of the
// object is implemented correctly, i.e. that
//   - MarshalBinary produces exactly BinarySize() bytes and UnmarshalBinary
//     recovers an identical object;
//   - WriteTo and ReadFrom round-trip the object through a Writer/Reader
//     and report exactly BinarySize() written and read bytes;
//   - WriteTo and ReadFrom round-trip the object through a plain io.Writer
//     and io.Reader (i.e. through the bufio fallback).
//
// The object must be passed as a non-nil pointer.
func RequireSerializerCorrect[T serializer](t *testing.T, object T) {

	t.Helper()

	size := object.BinarySize()

	data, err := object.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, size, len(data))

	objTest := newZero(object)
	require.NoError(t, objTest.UnmarshalBinary(data))
	require.Equal(t, object, objTest)

	buf := NewBufferSize(size)

	n, err := object.WriteTo(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)

	objTest = newZero(object)
	n, err = objTest.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.Equal(t, object, objTest)

	w := new(bytes.Buffer)

	n, err = object.WriteTo(w)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)

	objTest = newZero(object)
	n, err = objTest.ReadFrom(w)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.Equal(t, object, objTest)
}

// newZero allocates a fresh zero value of the type pointed to by object.
func newZero[T serializer](object T) T {
	return reflect.New(reflect.TypeOf(object).Elem()).Interface().(T)
}
