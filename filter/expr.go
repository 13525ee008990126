package filter

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/lpctl/luckperms"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	funcs      map[string]any
	now        func() time.Time
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*exprFilter](size)
		}
	}
}

// WithFunctions adds custom helper functions to the expression environment
func WithFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.funcs, funcs)
	}
}

// WithClock sets the time source used by expiry helpers
func WithClock(now func() time.Time) CompilerOption {
	return func(c *Compiler) {
		c.now = now
	}
}

// Compiler compiles filter expressions against the node environment
type Compiler struct {
	funcs map[string]any
	cache *lruCache[*exprFilter]
	now   func() time.Time
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		funcs: make(map[string]any),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultCompiler = NewCompiler(WithCache(100))

// Compile compiles an expression with the shared caching compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// A typed sample environment lets expr reject unknown fields at compile time
	program, err := expr.Compile(expression,
		expr.Env(c.environment(luckperms.Node{}, time.Time{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		funcs:      c.funcs,
		now:        c.now,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (c *Compiler) environment(node luckperms.Node, now time.Time) map[string]any {
	return nodeEnvironment(node, now, c.funcs)
}

// Match evaluates the filter against a node
func (f *exprFilter) Match(node luckperms.Node) (bool, error) {
	result, err := expr.Run(f.program, nodeEnvironment(node, f.now(), f.funcs))
	if err != nil {
		return false, &EvaluationError{
			NodeKey: node.Key,
			Reason:  "failed to evaluate expression",
			Err:     err,
		}
	}

	// AsBool guarantees the result type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func (f *exprFilter) String() string {
	return fmt.Sprintf("filter(%s)", f.expression)
}

// nodeEnvironment exposes a node and its helpers to expressions
func nodeEnvironment(node luckperms.Node, now time.Time, funcs map[string]any) map[string]any {
	env := make(map[string]any, 16+len(funcs))
	maps.Copy(env, funcs)

	contexts := node.Context
	if contexts == nil {
		contexts = []string{}
	}

	env["Key"] = node.Key
	env["Type"] = node.Type.String()
	env["Value"] = node.Value
	env["Context"] = contexts
	env["Expiry"] = node.ExpiresAt()

	env["hasContext"] = func(key, value string) bool {
		return slices.Contains(contexts, key+"="+value)
	}
	env["isTemporary"] = node.IsTemporary
	env["isExpired"] = func() bool {
		return node.IsExpired(now)
	}
	env["expiresWithin"] = func(d time.Duration) bool {
		return node.IsTemporary() && !node.IsExpired(now) && node.ExpiresAt().Sub(now) <= d
	}
	env["keyMatches"] = func(pattern string) (bool, error) {
		return regexp.MatchString(pattern, node.Key)
	}
	env["isType"] = func(name string) bool {
		t, err := luckperms.ParseNodeType(name)
		return err == nil && t == node.Type
	}
	env["now"] = func() time.Time {
		return now
	}

	return env
}
