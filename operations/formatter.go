package operations

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/s0up4200/lpctl/luckperms"
)

// ConsoleFormatter provides tree-style console output
type ConsoleFormatter struct {
	now func() time.Time
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{now: time.Now}
}

// branch returns the connector for an entry and the indent for its details
func branch(isLast bool) (string, string) {
	if isLast {
		return "\u2570\u2500\u2500 ", "    "
	}
	return "\u251c\u2500\u2500 ", "\u2502   "
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// FormatNodes formats a node list under a heading
func (f *ConsoleFormatter) FormatNodes(heading string, nodes []luckperms.Node) string {
	if len(nodes) == 0 {
		return "No nodes found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d %s):\n\n", heading, len(nodes), plural(len(nodes), "node"))
	f.writeNodes(&sb, "", nodes)
	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) writeNodes(sb *strings.Builder, indent string, nodes []luckperms.Node) {
	now := f.now()
	for i, node := range nodes {
		prefix, detail := branch(i == len(nodes)-1)

		value := "true"
		if !node.Value {
			value = "false"
		}
		fmt.Fprintf(sb, "%s%s%s = %s [%s]\n", indent, prefix, node.Key, value, node.Type)

		if len(node.Context) > 0 {
			fmt.Fprintf(sb, "%s%sContext: %s\n", indent, detail, strings.Join(node.Context, ", "))
		}
		if node.IsTemporary() {
			expiry := node.ExpiresAt()
			if node.IsExpired(now) {
				fmt.Fprintf(sb, "%s%sExpired: %s\n", indent, detail, expiry.Format(time.DateTime))
			} else {
				fmt.Fprintf(sb, "%s%sExpires: %s (in %s)\n", indent, detail, expiry.Format(time.DateTime),
					expiry.Sub(now).Round(time.Second))
			}
		}
	}
}

// FormatUser formats a user with groups and nodes
func (f *ConsoleFormatter) FormatUser(user *luckperms.User) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", user.Username)
	fmt.Fprintf(&sb, "\u251c\u2500\u2500 UUID: %s\n", user.UniqueID)

	groups := "none"
	if len(user.ParentGroups) > 0 {
		groups = strings.Join(user.ParentGroups, ", ")
	}
	fmt.Fprintf(&sb, "\u251c\u2500\u2500 Groups: %s\n", groups)

	fmt.Fprintf(&sb, "\u2570\u2500\u2500 Nodes (%d):\n", len(user.Nodes))
	f.writeNodes(&sb, "    ", user.Nodes)
	sb.WriteString("\n")
	return sb.String()
}

// FormatUserList formats identifiers, one per line
func (f *ConsoleFormatter) FormatUserList(users []luckperms.UserIdentifier) string {
	if len(users) == 0 {
		return "No users found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(users), "User"), len(users))
	for i, user := range users {
		prefix, _ := branch(i == len(users)-1)
		fmt.Fprintf(&sb, "%s%s (%s)\n", prefix, user.Username, user.UniqueID)
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatGroup formats a group with weight, metadata and nodes
func (f *ConsoleFormatter) FormatGroup(group *luckperms.Group) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s", group.Name)
	if display := group.GetDisplayName(); display != group.Name {
		fmt.Fprintf(&sb, " (%s)", display)
	}
	sb.WriteString("\n")

	if group.Weight != nil {
		fmt.Fprintf(&sb, "\u251c\u2500\u2500 Weight: %d\n", *group.Weight)
	}
	if line := metadataSummary(group.Metadata); line != "" {
		fmt.Fprintf(&sb, "\u251c\u2500\u2500 %s\n", line)
	}

	fmt.Fprintf(&sb, "\u2570\u2500\u2500 Nodes (%d):\n", len(group.Nodes))
	f.writeNodes(&sb, "    ", group.Nodes)
	sb.WriteString("\n")
	return sb.String()
}

// FormatGroupList formats group names
func (f *ConsoleFormatter) FormatGroupList(groups []string) string {
	if len(groups) == 0 {
		return "No groups found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(groups), "Group"), len(groups))
	for i, name := range groups {
		prefix, _ := branch(i == len(groups)-1)
		fmt.Fprintf(&sb, "%s%s\n", prefix, name)
	}
	sb.WriteString("\n")
	return sb.String()
}

func metadataSummary(meta luckperms.Metadata) string {
	var parts []string
	if meta.Prefix != nil {
		parts = append(parts, fmt.Sprintf("Prefix: %q", *meta.Prefix))
	}
	if meta.Suffix != nil {
		parts = append(parts, fmt.Sprintf("Suffix: %q", *meta.Suffix))
	}
	if meta.PrimaryGroup != nil {
		parts = append(parts, "Primary group: "+*meta.PrimaryGroup)
	}
	return strings.Join(parts, " | ")
}

// FormatMetadata formats the resolved metadata of a subject
func (f *ConsoleFormatter) FormatMetadata(subject Subject, metas []luckperms.Metadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nMetadata for %s:\n\n", subject)

	if len(metas) == 0 {
		sb.WriteString("\u2570\u2500\u2500 none\n\n")
		return sb.String()
	}

	for i, meta := range metas {
		prefix, indent := branch(i == len(metas)-1)

		summary := metadataSummary(meta)
		if summary == "" {
			summary = "No prefix, suffix or primary group"
		}
		fmt.Fprintf(&sb, "%s%s\n", prefix, summary)

		for _, key := range slices.Sorted(maps.Keys(meta.Meta)) {
			fmt.Fprintf(&sb, "%s%s = %s\n", indent, key, meta.Meta[key])
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatCheckResults formats a batch permission check
func (f *ConsoleFormatter) FormatCheckResults(result BatchCheckResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nPermission checks for %s (%d):\n\n", result.Subject, result.Requested)

	total := len(result.Checked) + len(result.Failed)
	i := 0
	for _, outcome := range result.Checked {
		i++
		prefix, indent := branch(i == total)

		verdict := "denied"
		if outcome.Result.Result {
			verdict = "granted"
		}
		fmt.Fprintf(&sb, "%s%s: %s\n", prefix, outcome.Permission, verdict)
		if outcome.Result.Node != nil {
			fmt.Fprintf(&sb, "%sVia: %s\n", indent, outcome.Result.Node)
		}
	}
	for _, failure := range result.Failed {
		i++
		prefix, indent := branch(i == total)
		fmt.Fprintf(&sb, "%s%s: error\n", prefix, failure.Permission)
		fmt.Fprintf(&sb, "%s%v\n", indent, failure.Err)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatTrackMove formats the outcome of a promotion or demotion
func (f *ConsoleFormatter) FormatTrackMove(user luckperms.UserIdentifier, track string, resp *luckperms.TrackMoveResponse) string {
	var sb strings.Builder

	outcome := "succeeded"
	if !resp.Success {
		outcome = "failed"
	}
	fmt.Fprintf(&sb, "\nTrack %s for %s %s\n", track, user.Username, outcome)
	fmt.Fprintf(&sb, "\u251c\u2500\u2500 Status: %s\n", resp.Status)

	from, to := resp.GroupFrom, resp.GroupTo
	if from == "" {
		from = "-"
	}
	if to == "" {
		to = "-"
	}
	fmt.Fprintf(&sb, "\u2570\u2500\u2500 %s -> %s\n\n", from, to)
	return sb.String()
}

// FormatSearchResults formats user or group search matches
func (f *ConsoleFormatter) FormatSearchResults(results *SearchResults) string {
	count := len(results.Users) + len(results.Groups)
	if count == 0 {
		return fmt.Sprintf("No matches for %s", results.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nMatches for %s (%d):\n\n", results.Query, count)

	i := 0
	write := func(name string, nodes []luckperms.Node) {
		i++
		prefix, indent := branch(i == count)
		fmt.Fprintf(&sb, "%s%s\n", prefix, name)
		f.writeNodes(&sb, indent, nodes)
	}
	for _, user := range results.Users {
		write(user.UniqueID.String(), user.Results)
	}
	for _, group := range results.Groups {
		write(group.Name, group.Results)
	}

	sb.WriteString("\n")
	return sb.String()
}
