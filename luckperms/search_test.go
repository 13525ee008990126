package luckperms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchRequestValues(t *testing.T) {
	tests := []struct {
		name     string
		search   SearchRequest
		expected string
	}{
		{"key", SearchByKey("essentials.fly"), "key=essentials.fly"},
		{"key with type", SearchByKey("group.admin").WithType(NodeTypeInheritance), "key=group.admin&type=inheritance"},
		{"key prefix", SearchByKeyPrefix("worldedit."), "keyStartsWith=worldedit."},
		{"key prefix with type", SearchByKeyPrefix("prefix.").WithType(NodeTypePrefix), "keyStartsWith=prefix.&type=prefix"},
		{"meta key", SearchByMetaKey("rank"), "metaKey=rank"},
		{"meta key with type", SearchByMetaKey("rank").WithType(NodeTypeMeta), "metaKey=rank&type=meta"},
		{"escaping", SearchByKey("a b&c"), "key=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.search.Validate())
			assert.Equal(t, tt.expected, tt.search.Values().Encode())
			assert.Equal(t, tt.expected, tt.search.String())
		})
	}
}

func TestSearchRequestSingleCriterion(t *testing.T) {
	values := SearchByMetaKey("rank").WithType(NodeTypeMeta).Values()
	assert.Len(t, values, 2)
	assert.False(t, values.Has("key"))
	assert.False(t, values.Has("keyStartsWith"))
}

func TestSearchRequestInvalid(t *testing.T) {
	assert.ErrorIs(t, SearchRequest{}.Validate(), ErrInvalidSearch)
	assert.Empty(t, SearchRequest{}.Values())
	assert.ErrorIs(t, SearchByKey("a").WithType(NodeType(42)).Validate(), ErrInvalidSearch)
	assert.Equal(t, NodeType(0), SearchByKey("a").NodeType())
}
