package filter

import (
	"testing"

	"github.com/s0up4200/lpctl/luckperms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerPresets(t *testing.T) {
	m := NewManager()

	err := m.RegisterPresets(map[string]string{
		"temporary": `isTemporary()`,
		"denied":    `not Value`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"denied", "temporary"}, m.Names())

	filter, ok := m.Get("denied")
	require.True(t, ok)
	matched, err := filter.Match(luckperms.NewNode("a", luckperms.NodeTypeRegexPermission, false))
	require.NoError(t, err)
	assert.True(t, matched)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestManagerRegisterPresetsIsAtomic(t *testing.T) {
	m := NewManager()

	err := m.RegisterPresets(map[string]string{
		"good": `Value`,
		"bad":  `Value and`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Empty(t, m.Names())
}

func TestManagerRegisterPreset(t *testing.T) {
	m := NewManager(WithCompiler(testCompiler()))

	require.NoError(t, m.RegisterPreset("meta", `isType("meta")`))
	require.NoError(t, m.RegisterPreset("meta", `isType("prefix")`))

	filter, ok := m.Get("meta")
	require.True(t, ok)
	assert.Equal(t, `isType("prefix")`, filter.Expression())

	assert.Error(t, m.RegisterPreset("broken", ``))
}

func TestManagerResolve(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterPreset("denied", `not Value`))

	tests := []struct {
		name       string
		expression string
		preset     string
		wantExpr   string
		wantNil    bool
		wantErr    bool
	}{
		{name: "nothing", wantNil: true},
		{name: "preset", preset: "denied", wantExpr: `not Value`},
		{name: "expression wins", expression: `Value`, preset: "denied", wantExpr: `Value`},
		{name: "unknown preset", preset: "nope", wantErr: true},
		{name: "bad expression", expression: `(`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := m.Resolve(tt.expression, tt.preset)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, filter)
				return
			}
			assert.Equal(t, tt.wantExpr, filter.Expression())
		})
	}
}
