package health

import "context"

// Indicator is a single named health check.
type Indicator interface {
	Name() string
	Check(ctx context.Context) Result
}

// IndicatorFunc adapts an ordinary function into an Indicator.
type IndicatorFunc struct {
	name string
	fn   func(context.Context) Result
}

func NewIndicatorFunc(name string, fn func(context.Context) Result) *IndicatorFunc {
	return &IndicatorFunc{name: name, fn: fn}
}

func (f *IndicatorFunc) Name() string {
	return f.name
}

func (f *IndicatorFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
