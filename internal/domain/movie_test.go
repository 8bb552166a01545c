package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMovie_InvariantsInOrder(t *testing.T) {
	g := []string{"Drama"}
	d := []string{"Director"}
	c := []string{"Actor"}

	cases := []struct {
		name string
		fn   func() (*Movie, error)
		want error
	}{
		{"blank title", func() (*Movie, error) { return NewMovie("  ", 0, nil, nil, nil, nil, nil) }, ErrNoTitle},
		{"zero year", func() (*Movie, error) { return NewMovie("T", 0, g, d, nil, c, nil) }, ErrNoYear},
		{"negative year", func() (*Movie, error) { return NewMovie("T", -1, g, d, nil, c, nil) }, ErrNoYear},
		{"no genres", func() (*Movie, error) { return NewMovie("T", 2000, nil, nil, nil, nil, nil) }, ErrNoGenres},
		{"no directors", func() (*Movie, error) { return NewMovie("T", 2000, g, nil, nil, c, nil) }, ErrNoDirectors},
		{"no cast", func() (*Movie, error) { return NewMovie("T", 2000, g, d, []string{"W"}, nil, nil) }, ErrNoCast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := tc.fn()
			require.Nil(t, m)
			require.ErrorIs(t, err, tc.want)
			require.True(t, IsMissingField(err))
		})
	}
	assert.Equal(t, "failed to get cast", ErrNoCast.Error())
}

func TestNewMovie_EmptyWritersAllowed(t *testing.T) {
	m, err := NewMovie("Title", 2000, []string{"Drama"}, []string{"Director"}, nil, []string{"Actor1", "Actor2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Title", m.Title())
	assert.Equal(t, 2000, m.Year())
	assert.Empty(t, m.Writers())
	assert.Equal(t, []string{"Actor1", "Actor2"}, m.Cast())
}

func TestMovie_IsImmutable(t *testing.T) {
	genres := []string{"Drama"}
	m, err := NewMovie("T", 2000, genres, []string{"D"}, nil, []string{"A"}, nil)
	require.NoError(t, err)

	genres[0] = "changed"
	got := m.Genres()
	got[0] = "changed again"
	assert.Equal(t, []string{"Drama"}, m.Genres())
}

func TestMovie_ReleaseCover(t *testing.T) {
	cover := NewCover([]byte{1, 2, 3}, "jpeg", 1, 1)
	m, err := NewMovie("T", 2000, []string{"G"}, []string{"D"}, nil, []string{"A"}, cover)
	require.NoError(t, err)

	got, err := m.Cover()
	require.NoError(t, err)
	b, err := got.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	m.Release()
	_, err = m.Cover()
	require.True(t, errors.Is(err, ErrDisposed))
	_, err = cover.Bytes()
	require.ErrorIs(t, err, ErrDisposed)

	// 重复释放是空操作
	m.Release()
	cover.Release()
	assert.True(t, cover.Released())
}

func TestCover_BytesIsCopy(t *testing.T) {
	c := NewCover([]byte{9}, "png", 2, 3)
	b, err := c.Bytes()
	require.NoError(t, err)
	b[0] = 0

	again, err := c.Bytes()
	require.NoError(t, err)
	assert.Equal(t, byte(9), again[0])
	w, h := c.Size()
	assert.Equal(t, [2]int{2, 3}, [2]int{w, h})
	assert.Equal(t, "png", c.Format())

	var nilCover *Cover
	nilCover.Release()
}
