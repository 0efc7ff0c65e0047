package tuple

import (
	"bytes"
	"testing"

	"heapstore/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDesc(t *testing.T) *TupleDescription {
	t.Helper()
	td, err := NewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.BoolType},
		[]string{"id", "name", "active"},
	)
	require.NoError(t, err)
	return td
}

func newTestTuple(t *testing.T, td *TupleDescription) *Tuple {
	t.Helper()
	tup := NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(7)))
	require.NoError(t, tup.SetField(1, types.NewStringField("alice", types.StringMaxSize)))
	require.NoError(t, tup.SetField(2, types.NewBoolField(true)))
	return tup
}

func TestNewTupleDesc(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		_, err := NewTupleDesc(nil, nil)
		assert.Error(t, err)
	})

	t.Run("name count mismatch", func(t *testing.T) {
		_, err := NewTupleDesc([]types.Type{types.IntType}, []string{"a", "b"})
		assert.Error(t, err)
	})

	t.Run("nil names allowed", func(t *testing.T) {
		td, err := NewTupleDesc([]types.Type{types.IntType}, nil)
		require.NoError(t, err)

		name, err := td.GetFieldName(0)
		require.NoError(t, err)
		assert.Empty(t, name)
	})

	t.Run("defensive copies", func(t *testing.T) {
		fieldTypes := []types.Type{types.IntType}
		td, err := NewTupleDesc(fieldTypes, nil)
		require.NoError(t, err)

		fieldTypes[0] = types.BoolType
		got, err := td.TypeAtIndex(0)
		require.NoError(t, err)
		assert.Equal(t, types.IntType, got)
	})
}

func TestTupleDescription_GetSize(t *testing.T) {
	td := newTestDesc(t)
	// 8 + (4+128) + 1
	assert.EqualValues(t, 141, td.GetSize())
}

func TestTupleDescription_Equals(t *testing.T) {
	td := newTestDesc(t)

	same, err := NewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.BoolType},
		nil, // names are not part of schema identity
	)
	require.NoError(t, err)
	assert.True(t, td.Equals(same))

	different, err := NewTupleDesc([]types.Type{types.IntType}, nil)
	require.NoError(t, err)
	assert.False(t, td.Equals(different))
	assert.False(t, td.Equals(nil))
}

func TestTupleDescription_FindFieldIndex(t *testing.T) {
	td := newTestDesc(t)

	i, err := td.FindFieldIndex("name")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = td.FindFieldIndex("Name")
	assert.Error(t, err)
}

func TestTuple_SetGetField(t *testing.T) {
	td := newTestDesc(t)
	tup := NewTuple(td)

	require.NoError(t, tup.SetField(0, types.NewIntField(1)))

	f, err := tup.GetField(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.(*types.IntField).Value)

	t.Run("index out of bounds", func(t *testing.T) {
		assert.Error(t, tup.SetField(3, types.NewIntField(1)))
		assert.Error(t, tup.SetField(-1, types.NewIntField(1)))
		_, err := tup.GetField(3)
		assert.Error(t, err)
	})

	t.Run("type mismatch", func(t *testing.T) {
		assert.Error(t, tup.SetField(0, types.NewBoolField(true)))
	})
}

func TestTuple_SerializeParseRoundTrip(t *testing.T) {
	td := newTestDesc(t)
	tup := newTestTuple(t, td)

	var buf bytes.Buffer
	require.NoError(t, tup.Serialize(&buf))
	assert.EqualValues(t, td.GetSize(), buf.Len())

	parsed, err := Parse(&buf, td)
	require.NoError(t, err)
	assert.True(t, tup.FieldsEqual(parsed))
	assert.Nil(t, parsed.RecordID)
}

func TestTuple_Serialize_UnsetField(t *testing.T) {
	td := newTestDesc(t)
	tup := NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(1)))

	var buf bytes.Buffer
	assert.Error(t, tup.Serialize(&buf))
}

func TestTuple_IsComplete(t *testing.T) {
	td := newTestDesc(t)
	tup := NewTuple(td)
	assert.False(t, tup.IsComplete())

	require.NoError(t, tup.SetField(0, types.NewIntField(1)))
	assert.False(t, tup.IsComplete())

	full := newTestTuple(t, td)
	assert.True(t, full.IsComplete())
}

func TestTuple_FieldsEqual(t *testing.T) {
	td := newTestDesc(t)
	a := newTestTuple(t, td)
	b := newTestTuple(t, td)

	assert.True(t, a.FieldsEqual(b))
	assert.False(t, a.FieldsEqual(nil))

	require.NoError(t, b.SetField(0, types.NewIntField(99)))
	assert.False(t, a.FieldsEqual(b))
}

func TestTuple_Clone(t *testing.T) {
	td := newTestDesc(t)
	tup := newTestTuple(t, td)
	tup.RecordID = &RecordID{}

	clone, err := tup.Clone()
	require.NoError(t, err)
	assert.True(t, tup.FieldsEqual(clone))
	assert.Nil(t, clone.RecordID)
}

func TestIterator(t *testing.T) {
	td := newTestDesc(t)
	tuples := []*Tuple{newTestTuple(t, td), newTestTuple(t, td)}

	it := NewIterator(tuples)

	t.Run("must be opened", func(t *testing.T) {
		_, err := it.HasNext()
		assert.Error(t, err)
	})

	require.NoError(t, it.Open())

	count := 0
	for {
		hasNext, err := it.HasNext()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		_, err = it.Next()
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)

	_, err := it.Next()
	assert.Error(t, err)

	require.NoError(t, it.Rewind())
	hasNext, err := it.HasNext()
	require.NoError(t, err)
	assert.True(t, hasNext)
}
