package filter

import (
	"github.com/s0up4200/lpctl/luckperms"
)

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	// Match reports whether a node satisfies the filter
	Match(node luckperms.Node) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Apply returns the nodes matched by f, in their original order.
// The first evaluation failure aborts the pass.
func Apply(f CompiledFilter, nodes []luckperms.Node) ([]luckperms.Node, error) {
	matched := make([]luckperms.Node, 0, len(nodes))
	for _, node := range nodes {
		ok, err := f.Match(node)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, node)
		}
	}
	return matched, nil
}
