package studio

import (
	"fmt"
	"slices"

	"shotcraft/internal/domain"
)

// Option is one button of a selector group.
type Option[T ~string] struct {
	Value    T    `json:"value"`
	Selected bool `json:"selected"`
}

// Selector is a single-select group over a closed set of values.
type Selector[T ~string] struct {
	title   string
	options []T
	current T
}

func NewSelector[T ~string](title string, options []T, current T) *Selector[T] {
	return &Selector[T]{title: title, options: slices.Clone(options), current: current}
}

func (s *Selector[T]) Title() string { return s.title }

func (s *Selector[T]) Current() T { return s.current }

// Options returns every option in display order with the current one marked.
func (s *Selector[T]) Options() []Option[T] {
	out := make([]Option[T], len(s.options))
	for i, v := range s.options {
		out[i] = Option[T]{Value: v, Selected: v == s.current}
	}
	return out
}

// Choose makes v the current value. Choosing the current value again reports
// changed=false.
func (s *Selector[T]) Choose(v T) (T, bool, error) {
	if !slices.Contains(s.options, v) {
		return s.current, false, fmt.Errorf("%s %q: %w", s.title, string(v), domain.ErrInvalidOption)
	}
	if v == s.current {
		return v, false, nil
	}
	s.current = v
	return v, true, nil
}
