package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Built-in calculator classes.
const (
	ClassConstant = "Constant"
	ClassSum      = "Sum"
	ClassSleep    = "Sleep"
	ClassFail     = "Fail"
	ClassWarn     = "Warn"
)

// Property idents used by the built-in calculators.
const (
	PropValue    = "value"
	PropA        = "a"
	PropB        = "b"
	PropOutput   = "output"
	PropDuration = "duration_ms"
	PropMessage  = "message"
)

var errNotNumeric = errors.New("value is not numeric")

// RegisterBuiltins adds the built-in calculator classes to r.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		class string
		fn    CalculatorFunc
	}{
		{ClassConstant, constant},
		{ClassSum, sum},
		{ClassSleep, sleep},
		{ClassFail, fail},
		{ClassWarn, warn},
	}
	for _, b := range builtins {
		if err := r.RegisterCalculator(b.class, b.fn); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry with the default task class and all
// built-in calculators.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}

func constant(ctx context.Context, calc *tree.Node) error {
	v, ok := calc.Property(PropValue)
	if !ok {
		return fmt.Errorf("missing property %q", PropValue)
	}
	calc.SetProperty(PropOutput, v)
	return nil
}

func sum(ctx context.Context, calc *tree.Node) error {
	a, err := numberProperty(calc, PropA)
	if err != nil {
		return err
	}
	b, err := numberProperty(calc, PropB)
	if err != nil {
		return err
	}
	calc.SetProperty(PropOutput, a+b)
	return nil
}

func sleep(ctx context.Context, calc *tree.Node) error {
	ms, err := numberProperty(calc, PropDuration)
	if err != nil {
		return err
	}
	timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func fail(ctx context.Context, calc *tree.Node) error {
	return errors.New(messageOf(calc, "calculator failed"))
}

func warn(ctx context.Context, calc *tree.Node) error {
	return api.Warning("%s", messageOf(calc, "calculator warned"))
}

func messageOf(calc *tree.Node, fallback string) string {
	if v, ok := calc.Property(PropMessage); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func numberProperty(calc *tree.Node, ident string) (float64, error) {
	v, ok := calc.Property(ident)
	if !ok {
		return 0, fmt.Errorf("missing property %q", ident)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", ident, err)
	}
	return f, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", errNotNumeric, v)
	}
}
