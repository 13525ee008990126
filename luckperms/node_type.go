package luckperms

import (
	"fmt"
	"strings"
)

// NodeType distinguishes the kinds of node LuckPerms stores.
// The zero value means no type and is only meaningful as "no filter" in a SearchRequest.
type NodeType int

const (
	NodeTypeRegexPermission NodeType = iota + 1
	NodeTypeInheritance
	NodeTypePrefix
	NodeTypeSuffix
	NodeTypeMeta
	NodeTypeWeight
	NodeTypeDisplayName
)

// nodeTypeNames is the only place wire names are spelled out. JSON and query
// parameters both go through it.
var nodeTypeNames = [...]string{
	NodeTypeRegexPermission: "regex_permission",
	NodeTypeInheritance:     "inheritance",
	NodeTypePrefix:          "prefix",
	NodeTypeSuffix:          "suffix",
	NodeTypeMeta:            "meta",
	NodeTypeWeight:          "weight",
	NodeTypeDisplayName:     "display_name",
}

// NodeTypes returns every defined node type in declaration order
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, len(nodeTypeNames)-1)
	for t := NodeTypeRegexPermission; int(t) < len(nodeTypeNames); t++ {
		types = append(types, t)
	}
	return types
}

// IsValid reports whether t is one of the defined node types
func (t NodeType) IsValid() bool {
	return t > 0 && int(t) < len(nodeTypeNames)
}

// String returns the canonical wire name
func (t NodeType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

func nodeTypeByName(s string) (NodeType, bool) {
	for i, name := range nodeTypeNames {
		if name != "" && name == s {
			return NodeType(i), true
		}
	}
	return 0, false
}

// ParseNodeType maps a name back to its NodeType, ignoring case and
// surrounding space. The JSON codec accepts only exact wire names.
func ParseNodeType(s string) (NodeType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := nodeTypeByName(s); ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t NodeType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot encode invalid node type %d", int(t))
	}
	return []byte(nodeTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *NodeType) UnmarshalText(text []byte) error {
	parsed, ok := nodeTypeByName(string(text))
	if !ok {
		return fmt.Errorf("unknown node type %q", text)
	}
	*t = parsed
	return nil
}
