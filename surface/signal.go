package surface

// Signal is a minimal typed listener list, standing in for the
// collaborator's wl_signal/listener pairs: Connect registers an
// observer, Emit calls every observer in registration order. Unlike
// wl_signal it doesn't support removal mid-iteration, which none of
// this module's emitters need.
type Signal[T any] struct {
	listeners []func(T)
}

// Connect registers f to be called on every future Emit.
func (s *Signal[T]) Connect(f func(T)) {
	s.listeners = append(s.listeners, f)
}

// Emit calls every connected listener with v, in registration order.
func (s *Signal[T]) Emit(v T) {
	for _, f := range s.listeners {
		f(v)
	}
}
