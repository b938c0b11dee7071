package midiwindows

import "sync"

// instances hands out integer keys for values that native callbacks need to
// find again. winmm carries the key in dwInstance.
type instances[T any] struct {
	mu   sync.RWMutex
	next uintptr
	byID map[uintptr]T
}

// add stores v and returns its key. Keys start at 1 and are never reused.
func (r *instances[T]) add(v T) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID == nil {
		r.byID = make(map[uintptr]T)
	}
	r.next++
	r.byID[r.next] = v
	return r.next
}

func (r *instances[T]) get(id uintptr) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	return v, ok
}

func (r *instances[T]) remove(id uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}
