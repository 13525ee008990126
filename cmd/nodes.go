package cmd

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/luckperms"
)

// nodeFlags are shared by the add, remove and set subcommands
type nodeFlags struct {
	nodeType string
	value    bool
	contexts []string
	expiry   string
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.nodeType, "type", "t", "", "node type (inferred from the key when omitted)")
	cmd.Flags().BoolVar(&f.value, "value", true, "node value")
	cmd.Flags().StringArrayVarP(&f.contexts, "context", "c", nil, "context as key=value (repeatable)")
	cmd.Flags().StringVarP(&f.expiry, "expiry", "e", "", "expiry as a duration from now (e.g. 12h, 7d) or a unix timestamp")
}

// build turns keys into nodes carrying the flag settings
func (f *nodeFlags) build(keys []string, now time.Time) ([]luckperms.Node, error) {
	contexts, err := parseContexts(f.contexts)
	if err != nil {
		return nil, err
	}

	var expiry time.Time
	if f.expiry != "" {
		expiry, err = parseExpiry(f.expiry, now)
		if err != nil {
			return nil, err
		}
	}

	nodes := make([]luckperms.Node, 0, len(keys))
	for _, key := range keys {
		nodeType := inferNodeType(key)
		if f.nodeType != "" {
			nodeType, err = luckperms.ParseNodeType(f.nodeType)
			if err != nil {
				return nil, err
			}
		}

		node := luckperms.NewNode(key, nodeType, f.value)
		node.Context = slices.Clone(contexts)
		if !expiry.IsZero() {
			node = node.WithExpiry(expiry)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// inferNodeType follows the LuckPerms key conventions, e.g. group.<name> is inheritance
func inferNodeType(key string) luckperms.NodeType {
	prefixes := []struct {
		prefix   string
		nodeType luckperms.NodeType
	}{
		{"group.", luckperms.NodeTypeInheritance},
		{"prefix.", luckperms.NodeTypePrefix},
		{"suffix.", luckperms.NodeTypeSuffix},
		{"meta.", luckperms.NodeTypeMeta},
		{"weight.", luckperms.NodeTypeWeight},
		{"displayname.", luckperms.NodeTypeDisplayName},
	}

	lower := strings.ToLower(key)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.nodeType
		}
	}
	return luckperms.NodeTypeRegexPermission
}

// parseContexts validates key=value pairs
func parseContexts(raw []string) ([]string, error) {
	contexts := make([]string, 0, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid context %q: expected key=value", pair)
		}
		contexts = append(contexts, key+"="+value)
	}
	return contexts, nil
}

// parseExpiry accepts a duration relative to now, with a d suffix for days, or unix seconds
func parseExpiry(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs <= now.Unix() {
			return time.Time{}, fmt.Errorf("expiry %d is in the past", secs)
		}
		return time.Unix(secs, 0), nil
	}

	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid expiry %q", raw)
		}
		return now.AddDate(0, 0, n), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry %q: %w", raw, err)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("expiry %q must be in the future", raw)
	}
	return now.Add(d), nil
}

// selectNodes picks the stored nodes with one of the given keys, restricted to
// the given contexts when any are set
func selectNodes(stored []luckperms.Node, keys []string, contexts []string) []luckperms.Node {
	var selected []luckperms.Node
	for _, node := range stored {
		if !slices.Contains(keys, node.Key) {
			continue
		}
		if len(contexts) > 0 && !sameContexts(node.Context, contexts) {
			continue
		}
		selected = append(selected, node)
	}
	return selected
}

func sameContexts(a, b []string) bool {
	return slices.Equal(slices.Sorted(slices.Values(a)), slices.Sorted(slices.Values(b)))
}

// queryOptions builds check options from --context flags; nil means server defaults
func queryOptions(rawContexts []string, nonContextual bool) (*luckperms.QueryOptions, error) {
	if len(rawContexts) == 0 && !nonContextual {
		return nil, nil
	}

	opts := &luckperms.QueryOptions{Mode: luckperms.QueryModeContextual}
	if nonContextual {
		opts.Mode = luckperms.QueryModeNonContextual
	}

	contexts, err := parseContexts(rawContexts)
	if err != nil {
		return nil, err
	}
	for _, pair := range contexts {
		key, value, _ := strings.Cut(pair, "=")
		opts.Contexts = append(opts.Contexts, luckperms.Context{Key: key, Value: value})
	}
	return opts, nil
}

// searchFlags select the criterion of a user or group search
type searchFlags struct {
	key       string
	keyPrefix string
	metaKey   string
	nodeType  string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "key", "", "match nodes with exactly this key")
	cmd.Flags().StringVar(&f.keyPrefix, "key-prefix", "", "match nodes whose key starts with this prefix")
	cmd.Flags().StringVar(&f.metaKey, "meta-key", "", "match meta nodes with this meta key")
	cmd.Flags().StringVarP(&f.nodeType, "type", "t", "", "restrict matches to one node type")
	cmd.MarkFlagsOneRequired("key", "key-prefix", "meta-key")
	cmd.MarkFlagsMutuallyExclusive("key", "key-prefix", "meta-key")
}

func (f *searchFlags) request() (luckperms.SearchRequest, error) {
	var search luckperms.SearchRequest
	switch {
	case f.key != "":
		search = luckperms.SearchByKey(f.key)
	case f.keyPrefix != "":
		search = luckperms.SearchByKeyPrefix(f.keyPrefix)
	case f.metaKey != "":
		search = luckperms.SearchByMetaKey(f.metaKey)
	default:
		return search, luckperms.ErrInvalidSearch
	}

	if f.nodeType != "" {
		t, err := luckperms.ParseNodeType(f.nodeType)
		if err != nil {
			return search, err
		}
		search = search.WithType(t)
	}
	return search, nil
}

// confirm asks a yes/no question unless skip is set
func confirm(in io.Reader, out io.Writer, skip bool, question string) bool {
	if skip {
		return true
	}

	fmt.Fprintf(out, "%s [y/N]: ", question)
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
