package luckperms

import (
	"net/url"
)

type searchField string

const (
	searchFieldKey           searchField = "key"
	searchFieldKeyStartsWith searchField = "keyStartsWith"
	searchFieldMetaKey       searchField = "metaKey"
)

// SearchRequest selects nodes by exact key, key prefix or meta key, optionally
// restricted to one NodeType. It is sent as query parameters, never as JSON.
// Build one with SearchByKey, SearchByKeyPrefix or SearchByMetaKey.
type SearchRequest struct {
	field    searchField
	value    string
	nodeType NodeType
}

// SearchByKey matches nodes whose key equals key
func SearchByKey(key string) SearchRequest {
	return SearchRequest{field: searchFieldKey, value: key}
}

// SearchByKeyPrefix matches nodes whose key starts with prefix
func SearchByKeyPrefix(prefix string) SearchRequest {
	return SearchRequest{field: searchFieldKeyStartsWith, value: prefix}
}

// SearchByMetaKey matches meta nodes with the given meta key
func SearchByMetaKey(metaKey string) SearchRequest {
	return SearchRequest{field: searchFieldMetaKey, value: metaKey}
}

// WithType restricts the search to one node type
func (s SearchRequest) WithType(t NodeType) SearchRequest {
	s.nodeType = t
	return s
}

// NodeType returns the type filter, or zero if none is set
func (s SearchRequest) NodeType() NodeType {
	return s.nodeType
}

// Validate checks that exactly one search criterion is set
func (s SearchRequest) Validate() error {
	if s.field == "" {
		return ErrInvalidSearch
	}
	if s.nodeType != 0 && !s.nodeType.IsValid() {
		return ErrInvalidSearch
	}
	return nil
}

// Values projects the request into query parameters. Encoded, the criterion always
// precedes type since url.Values sorts by key.
func (s SearchRequest) Values() url.Values {
	params := url.Values{}
	if s.field == "" {
		return params
	}
	params.Set(string(s.field), s.value)
	if s.nodeType.IsValid() {
		params.Set("type", s.nodeType.String())
	}
	return params
}

func (s SearchRequest) String() string {
	return s.Values().Encode()
}
