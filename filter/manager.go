package filter

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Manager holds named filter presets
type Manager struct {
	compiler *Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler *Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Compile compiles an ad-hoc expression with the manager's compiler
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// RegisterPreset registers a new preset or replaces an existing one
func (m *Manager) RegisterPreset(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile preset '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterPresets registers multiple presets at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))

	for _, name := range slices.Sorted(maps.Keys(presets)) {
		filter, err := m.compiler.Compile(presets[name])
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// Get returns a compiled preset by name
func (m *Manager) Get(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// Names returns all registered preset names, sorted
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve picks the filter for a command invocation: an inline expression wins
// over a preset name. Both empty yields nil.
func (m *Manager) Resolve(expression, preset string) (CompiledFilter, error) {
	if expression != "" {
		return m.compiler.Compile(expression)
	}
	if preset == "" {
		return nil, nil
	}
	filter, ok := m.Get(preset)
	if !ok {
		return nil, fmt.Errorf("preset '%s' not found", preset)
	}
	return filter, nil
}
