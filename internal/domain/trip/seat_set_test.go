package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeatSet_DedupesAndSorts(t *testing.T) {
	s := NewSeatSet([]string{"B2", "A1", "B2", "", "A1", "C3"})
	assert.Equal(t, []string{"A1", "B2", "C3"}, s.Strings())
}

func TestNewSeatSet_Empty(t *testing.T) {
	assert.Empty(t, NewSeatSet(nil))
	assert.Empty(t, NewSeatSet([]string{"", ""}))
}

func TestSeatSet_Contains(t *testing.T) {
	s := NewSeatSet([]string{"A1", "B2"})
	assert.True(t, s.Contains("A1"))
	assert.False(t, s.Contains("C3"))
}

func TestSeatSet_Intersect(t *testing.T) {
	a := NewSeatSet([]string{"A1", "B2", "C3"})
	b := NewSeatSet([]string{"B2", "C3", "D4"})

	assert.Equal(t, []string{"B2", "C3"}, a.Intersect(b).Strings())
	assert.Empty(t, a.Intersect(NewSeatSet([]string{"E5"})))
}

func TestSeatSet_Union(t *testing.T) {
	a := NewSeatSet([]string{"A1", "B2"})
	b := NewSeatSet([]string{"B2", "C3"})

	assert.Equal(t, []string{"A1", "B2", "C3"}, a.Union(b).Strings())
}

func TestSeatSet_Without(t *testing.T) {
	a := NewSeatSet([]string{"A1", "B2", "C3"})
	b := NewSeatSet([]string{"B2", "D4"})

	assert.Equal(t, []string{"A1", "C3"}, a.Without(b).Strings())
}
