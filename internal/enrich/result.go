package enrich

// Outcome records whether a lookup produced real data or a fallback value.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
)

// Result is the typed return of every enrichment lookup. Value is always
// usable; Err carries the cause when Outcome is OutcomeFallback.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeSuccess}
}

func Fallback[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeFallback, Err: err}
}
