package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameGroup(t *testing.T) {
	tests := []struct {
		name string
		a    Group
		b    Group
		want bool
	}{
		{"both empty", Group{}, Group{}, true},
		{"identical", Group{GuestAdult, GuestChild}, Group{GuestAdult, GuestChild}, true},
		{"reordered", Group{GuestChild, GuestAdult, GuestAdult}, Group{GuestAdult, GuestChild, GuestAdult}, true},
		{"different size", Group{GuestAdult}, Group{GuestAdult, GuestAdult}, false},
		{"same size different mix", Group{GuestAdult, GuestAdult}, Group{GuestAdult, GuestChild}, false},
		{"disjoint", Group{GuestStaff}, Group{GuestStudent}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameGroup(tt.a, tt.b))
			assert.Equal(t, tt.want, SameGroup(tt.b, tt.a), "comparison must be symmetric")
		})
	}
}

func TestSameGroupIgnoresEveryPermutation(t *testing.T) {
	base := Group{GuestParent, GuestChild, GuestChild, GuestAdult}
	reference := Group{GuestAdult, GuestChild, GuestParent, GuestChild}

	var permute func(prefix, rest Group)
	permute = func(prefix, rest Group) {
		if len(rest) == 0 {
			assert.True(t, SameGroup(prefix, reference), "permutation %v", prefix)
			return
		}
		for i := range rest {
			next := append(append(Group{}, prefix...), rest[i])
			remaining := append(append(Group{}, rest[:i]...), rest[i+1:]...)
			permute(next, remaining)
		}
	}
	permute(Group{}, base)
}

func TestParseGroup(t *testing.T) {
	group, err := ParseGroup([]string{"Adult", " child ", "staff"})
	require.NoError(t, err)
	assert.Equal(t, Group{GuestAdult, GuestChild, GuestStaff}, group)
	assert.Equal(t, 3, group.Headcount())
}

func TestParseGroupRejectsWholeGroupOnUnknownGuest(t *testing.T) {
	group, err := ParseGroup([]string{"adult", "dragon", "child"})
	assert.ErrorIs(t, err, ErrUnknownGuest)
	assert.Nil(t, group)
}

func TestContainsGroup(t *testing.T) {
	eligible := []Group{{GuestAdult}, {GuestParent, GuestChild}}

	assert.True(t, ContainsGroup(eligible, Group{GuestChild, GuestParent}))
	assert.False(t, ContainsGroup(eligible, Group{GuestChild}))
	assert.False(t, ContainsGroup(nil, Group{GuestAdult}))
}
