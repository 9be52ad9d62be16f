package bridge

const firstHandle = 1000

// handles hands out integer references for values exposed to the client
// (stack frames, variable containers, script sources). References are never reused within a session,
// so a stale reference held by the client fails to resolve instead of resolving to the wrong value.
type handles[T any] struct {
	next   int
	values map[int]T
}

func newHandles[T any]() *handles[T] {
	return &handles[T]{
		next:   firstHandle,
		values: map[int]T{},
	}
}

func (h *handles[T]) create(v T) int {
	id := h.next
	h.next++
	h.values[id] = v
	return id
}

func (h *handles[T]) get(id int) (T, bool) {
	v, found := h.values[id]
	return v, found
}

// reset invalidates all outstanding references.
func (h *handles[T]) reset() {
	clear(h.values)
}
