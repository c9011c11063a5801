package cmd

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores units by identifier with a secondary alias index. Each handler
// owns its registries; there is no global registry.
type Registry[T Unit] struct {
	mu      sync.RWMutex
	units   map[string]T
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry[T Unit]() *Registry[T] {
	return &Registry[T]{
		units:   make(map[string]T),
		aliases: make(map[string]string),
	}
}

// Add registers units. It fails on an invalid unit or on an identifier or
// alias that is already taken; units before the failing one stay registered.
func (r *Registry[T]) Add(units ...T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range units {
		info := u.Unit()
		if info == nil {
			return fmt.Errorf("%w: nil unit", ErrInvalidUnit)
		}
		if err := info.validate(); err != nil {
			return err
		}
		if r.takenLocked(info.ID) {
			return fmt.Errorf("%w: %q", ErrDuplicateUnit, info.ID)
		}
		for _, a := range info.Aliases {
			if a == "" || a == info.ID {
				continue
			}
			if r.takenLocked(a) {
				return fmt.Errorf("%w: alias %q of %q", ErrDuplicateUnit, a, info.ID)
			}
		}

		r.units[info.ID] = u
		for _, a := range info.Aliases {
			if a != "" && a != info.ID {
				r.aliases[a] = info.ID
			}
		}
	}
	return nil
}

func (r *Registry[T]) takenLocked(name string) bool {
	if _, ok := r.units[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Get resolves name directly or through the alias index.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.units[name]; ok {
		return u, true
	}
	if id, ok := r.aliases[name]; ok {
		u, ok := r.units[id]
		return u, ok
	}
	var zero T
	return zero, false
}

// All returns every unit sorted by identifier.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]T, 0, len(r.units))
	for _, u := range r.units {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Unit().ID < list[j].Unit().ID
	})
	return list
}

// Len returns the number of registered units.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}
