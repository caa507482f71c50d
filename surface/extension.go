package surface

import "github.com/pkg/errors"

// Extension is a synced protocol plug-in: a feature whose state must
// travel through the same pending/cached/current queue as the core
// surface state, squashing forward on exactly the same schedule (a
// viewport, a presentation-feedback object, anything that needs "take
// effect atomically with this commit" semantics). The engine carries
// one opaque shadow slot per State per registered Extension and drives
// it through the three lifecycle calls below; it never interprets the
// shadow's contents.
type Extension interface {
	// CreateState allocates a new shadow slot, called once per State
	// currently in a surface's queue at registration time and once
	// per State created afterward (a cached state detached by a
	// commit under lock).
	CreateState() (interface{}, error)

	// DestroyState releases a shadow slot, called once per State when
	// that State leaves the queue (squashed away) or when the owning
	// Surface is destroyed.
	DestroyState(shadow interface{})

	// SquashState merges src into dst, following the same
	// overwrite-only-if-touched discipline the core fields use. It is
	// called in the same squash pass that merges the core State
	// fields, after them.
	SquashState(dst, src interface{})
}

// Precommitter is an optional Extension capability: implement it when
// a shadow needs to observe (or snapshot from) the surface immediately
// before a new state becomes current, mirroring a role's Precommit
// hook but scoped to one extension's own shadow.
type Precommitter interface {
	Precommit(shadow, next interface{})
}

// RegisterExtension installs ext on s, allocating a shadow slot for
// every State currently queued (current, any cached, pending). If
// shadow allocation fails partway through, every shadow already
// created for this call is torn down and the registration has no
// effect.
func (s *Surface) RegisterExtension(ext Extension) error {
	states := s.allStates()
	created := make([]interface{}, 0, len(states))
	for range states {
		shadow, err := ext.CreateState()
		if err != nil {
			for _, c := range created {
				ext.DestroyState(c)
			}
			return errors.Wrap(ErrNoMemory, err.Error())
		}
		created = append(created, shadow)
	}
	for i, st := range states {
		st.Shadows = append(st.Shadows, created[i])
	}
	s.extensions = append(s.extensions, ext)
	return nil
}

// UnregisterExtension removes ext from s, destroying its shadow slot
// in every queued State. It is a no-op if ext was never registered.
func (s *Surface) UnregisterExtension(ext Extension) {
	idx := -1
	for i, e := range s.extensions {
		if e == ext {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for _, st := range s.allStates() {
		ext.DestroyState(st.Shadows[idx])
		st.Shadows = append(st.Shadows[:idx], st.Shadows[idx+1:]...)
	}
	s.extensions = append(s.extensions[:idx], s.extensions[idx+1:]...)
}

// newQueuedState allocates a fresh, default-valued State with a
// shadow slot for every extension currently registered on s. Used for
// the cached state a commit detaches when the pending generation is
// locked; New builds the initial current/pending pair with newState,
// before any extension can be registered.
func (s *Surface) newQueuedState() (*State, error) {
	st := newState()
	st.Shadows = make([]interface{}, 0, len(s.extensions))
	for i, ext := range s.extensions {
		shadow, err := ext.CreateState()
		if err != nil {
			for j := 0; j < i; j++ {
				s.extensions[j].DestroyState(st.Shadows[j])
			}
			return nil, errors.Wrap(ErrNoMemory, err.Error())
		}
		st.Shadows = append(st.Shadows, shadow)
	}
	return st, nil
}
