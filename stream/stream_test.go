package stream

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ftsarc/buffer"
	"github.com/meigma/ftsarc/internal/arctype"
)

func TestUnboundStream(t *testing.T) {
	t.Parallel()

	s := New()
	assert.True(t, s.Invalid())
	assert.True(t, s.EOD())
	assert.Equal(t, "", s.ReadString())

	n, err := s.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)

	s.Insert([]byte("abc"))
	assert.False(t, s.Invalid())
	assert.Equal(t, "abc", string(s.Bytes()))
	assert.Equal(t, uint64(3), s.Pos())
}

func TestInsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial string
		pos     uint64
		insert  string
		want    string
		wantPos uint64
	}{
		{"at start", "world", 0, "hello ", "hello world", 6},
		{"in middle", "held", 2, "l", "helld", 3},
		{"at end", "abc", 3, "def", "abcdef", 6},
		{"empty insert", "abc", 1, "", "abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := FromBytes([]byte(tt.initial))
			s.SetPos(tt.pos)
			s.Insert([]byte(tt.insert))
			assert.Equal(t, tt.want, string(s.Bytes()))
			assert.Equal(t, tt.wantPos, s.Pos())
		})
	}
}

func TestInsertPreservesSurroundingBytes(t *testing.T) {
	t.Parallel()

	before := bytes.Repeat([]byte{0xAB}, 300)
	s := FromBytes(before)
	s.SetPos(100)
	s.Insert(bytes.Repeat([]byte{0x01}, 50))

	require.Equal(t, uint64(350), s.Size())
	assert.Equal(t, before[:100], s.Bytes()[:100])
	assert.Equal(t, bytes.Repeat([]byte{0x01}, 50), s.Bytes()[100:150])
	assert.Equal(t, before[100:], s.Bytes()[150:])
}

func TestOverwrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial string
		pos     uint64
		write   string
		want    string
		wantPos uint64
	}{
		{"fits in place", "abcdef", 1, "XY", "aXYdef", 3},
		{"exactly to end", "abcdef", 4, "XY", "abcdXY", 6},
		{"at end inserts", "abc", 3, "XYZ", "abcXYZ", 6},
		{"straddles end", "abcdef", 4, "WXYZ", "abcdWXYZ", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := FromBytes([]byte(tt.initial))
			s.SetPos(tt.pos)
			s.Overwrite([]byte(tt.write))
			assert.Equal(t, tt.want, string(s.Bytes()))
			assert.Equal(t, tt.wantPos, s.Pos())
		})
	}
}

func TestOverwriteUnboundInserts(t *testing.T) {
	t.Parallel()

	s := New()
	s.Overwrite([]byte("abc"))
	assert.Equal(t, "abc", string(s.Bytes()))
}

func TestMoveAndResize(t *testing.T) {
	t.Parallel()

	t.Run("forward overlapping", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abcdef"))
		require.NoError(t, s.MoveAndResize(1, 3, 2))
		assert.Equal(t, []byte{'a', 0, 0, 'b', 'c', 'd'}, s.Bytes())
	})

	t.Run("forward grows", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abc"))
		require.NoError(t, s.MoveAndResize(1, 2, 3))
		assert.Equal(t, []byte{'a', 0, 0, 0, 'b', 'c'}, s.Bytes())
	})

	t.Run("forward disjoint", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("ab"))
		require.NoError(t, s.MoveAndResize(0, 2, 4))
		assert.Equal(t, []byte{0, 0, 0, 0, 'a', 'b'}, s.Bytes())
	})

	t.Run("backward", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abcdef"))
		require.NoError(t, s.MoveAndResize(3, 3, -2))
		assert.Equal(t, []byte{'a', 'd', 'e', 'f', 0, 0}, s.Bytes())
	})

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abc"))
		err := s.MoveAndResize(1, 1, -2)
		assert.ErrorIs(t, err, arctype.ErrInvalidParam)
	})

	t.Run("source out of range", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abc"))
		err := s.MoveAndResize(2, 5, 1)
		assert.ErrorIs(t, err, arctype.ErrInvalidParam)
	})

	t.Run("overflow", func(t *testing.T) {
		t.Parallel()
		s := FromBytes([]byte("abc"))
		err := s.MoveAndResize(math.MaxUint64, 1, 1)
		assert.ErrorIs(t, err, arctype.ErrInvalidParam)
	})

	t.Run("unbound creates buffer", func(t *testing.T) {
		t.Parallel()
		s := New()
		require.NoError(t, s.MoveAndResize(0, 0, 5))
		assert.Equal(t, make([]byte, 5), s.Bytes())
	})
}

func TestSetPosClamps(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("abc"))
	s.SetPos(10)
	assert.Equal(t, uint64(3), s.Pos())
	assert.True(t, s.EOD())
	assert.Equal(t, uint64(0), s.SizeTillEnd())
}

func TestGrowAndShrink(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("abc"))
	s.SetPos(3)
	s.Grow(2)
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0}, s.Bytes())
	assert.Equal(t, uint64(3), s.Pos())

	s.Shrink(10)
	assert.Equal(t, uint64(5), s.Size(), "shrinking past the size is a no-op")

	s.SetPos(5)
	s.Shrink(3)
	assert.Equal(t, "ab", string(s.Bytes()))
	assert.Equal(t, uint64(1), s.Pos())

	s.Shrink(2)
	assert.Equal(t, uint64(0), s.Size())
	assert.Equal(t, uint64(0), s.Pos())

	unbound := New()
	unbound.Shrink(0)
	unbound.Grow(3)
	assert.Equal(t, make([]byte, 3), unbound.Bytes())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("abcdef"))
	s.SetPos(6)
	s.Truncate(4)
	assert.Equal(t, "abcd", string(s.Bytes()))
	assert.Equal(t, uint64(4), s.Pos())
	assert.True(t, s.EOD())

	s.Truncate(10)
	assert.Equal(t, uint64(4), s.Size())
}

func TestReadString(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("one\x00two\x00three"))
	assert.Equal(t, "one", s.ReadString())
	assert.Equal(t, "two", s.ReadString())
	assert.Equal(t, "three", s.ReadString())
	assert.True(t, s.EOD())
	assert.Equal(t, "", s.ReadString())
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	s.InsertString("alpha")
	s.InsertString("")
	s.InsertString("beta")
	s.SetPos(0)
	assert.Equal(t, "alpha", s.ReadString())
	assert.Equal(t, "", s.ReadString())
	assert.Equal(t, "beta", s.ReadString())

	s.SetPos(0)
	s.OverwriteString("ALP")
	assert.Equal(t, "ALP\x00a\x00\x00beta\x00", string(s.Bytes()))
}

func TestReadRaw(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("abcdef"))
	p := make([]byte, 4)
	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(p))

	n, err = s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Read(p)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteInsertsAtCursor(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("ad"))
	s.SetPos(1)
	_, err := io.Copy(s, bytes.NewReader([]byte("bc")))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(s.Bytes()))
}

func TestClone(t *testing.T) {
	t.Parallel()

	s := FromBytes([]byte("abc"))
	s.SetPos(2)
	c := s.Clone()
	c.Overwrite([]byte("Z"))
	assert.Equal(t, "abc", string(s.Bytes()))
	assert.Equal(t, "abZ", string(c.Bytes()))
	assert.True(t, New().Clone().Invalid())
}

func TestFletcher32FromCursor(t *testing.T) {
	t.Parallel()

	data := []byte("headerpayload")
	s := FromBytes(data)
	s.SetPos(6)
	assert.Equal(t, buffer.Fletcher32([]byte("payload")), s.Fletcher32FromCursor())
}

func TestReader(t *testing.T) {
	t.Parallel()

	data := []byte("name\x00\x01\x02rest")
	r := NewReader(buffer.NewView(data))
	assert.False(t, r.Invalid())
	assert.Equal(t, "name", r.ReadString())

	v, ok := ReadValue[uint16](r)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0201), v)

	assert.Equal(t, []byte("re"), r.Next(2))
	assert.Equal(t, uint64(2), r.SizeTillEnd())
	assert.Equal(t, uint64(2), r.Skip(10))
	assert.True(t, r.EOD())
	assert.Empty(t, r.Next(5))

	r.SetPos(100)
	assert.Equal(t, uint64(len(data)), r.Pos())

	assert.True(t, NewReader(buffer.View{}).EOD())
}
