package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// CalculatorFunc is the computation behind a calculator class. It reads and
// writes the calculator's properties. Returning an error built with
// api.Warning finishes the calculator with warnings instead of failing it.
type CalculatorFunc func(ctx context.Context, calc *tree.Node) error

var ErrClassRegistered = errors.New("class already registered")

// Registry maps component classes to their kind and, for calculators, to the
// function that executes them. It implements tree.Factory so restores can
// tell known classes from unknown ones.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]struct{}
	calcs map[string]CalculatorFunc
}

var _ tree.Factory = (*Registry)(nil)

// NewRegistry returns a registry that knows the default task class.
func NewRegistry() *Registry {
	return &Registry{
		tasks: map[string]struct{}{tree.DefaultTaskClass: {}},
		calcs: make(map[string]CalculatorFunc),
	}
}

// RegisterTask adds a task class.
func (r *Registry) RegisterTask(class string) error {
	if class == "" {
		return errors.New("task class is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.knownLocked(class) {
		return fmt.Errorf("%w: %s", ErrClassRegistered, class)
	}
	r.tasks[class] = struct{}{}
	return nil
}

// RegisterCalculator adds a calculator class executed by fn.
func (r *Registry) RegisterCalculator(class string, fn CalculatorFunc) error {
	if class == "" {
		return errors.New("calculator class is required")
	}
	if fn == nil {
		return fmt.Errorf("calculator %q: nil function", class)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.knownLocked(class) {
		return fmt.Errorf("%w: %s", ErrClassRegistered, class)
	}
	r.calcs[class] = fn
	return nil
}

func (r *Registry) knownLocked(class string) bool {
	if _, ok := r.tasks[class]; ok {
		return true
	}
	_, ok := r.calcs[class]
	return ok
}

// Lookup implements tree.Factory.
func (r *Registry) Lookup(class string) (tree.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.tasks[class]; ok {
		return tree.KindTask, true
	}
	if _, ok := r.calcs[class]; ok {
		return tree.KindCalculator, true
	}
	return 0, false
}

// Calculator returns the function registered for class.
func (r *Registry) Calculator(class string) (CalculatorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.calcs[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownClass, class)
	}
	return fn, nil
}

// Classes returns every registered class name, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.tasks)+len(r.calcs))
	for c := range r.tasks {
		out = append(out, c)
	}
	for c := range r.calcs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// New instantiates a component of a registered class.
func (r *Registry) New(class, name string) (*tree.Node, error) {
	kind, ok := r.Lookup(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownClass, class)
	}
	if kind == tree.KindTask {
		return tree.NewTaskOfClass(class, name), nil
	}
	return tree.NewCalculator(class, name), nil
}
