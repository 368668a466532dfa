package physics

type slot[T any] struct {
	gen  uint32
	live bool
	v    T
}

// arena stores values in reusable slots. Every reuse of a slot bumps its
// generation so handles minted for the previous occupant stop resolving.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v T) (uint32, uint32) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.v = v
	a.live++
	return idx, s.gen
}

func (a *arena[T]) get(idx, gen uint32) (*T, bool) {
	if gen == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.live || s.gen != gen {
		return nil, false
	}
	return &s.v, true
}

func (a *arena[T]) remove(idx, gen uint32) bool {
	if _, ok := a.get(idx, gen); !ok {
		return false
	}
	s := &a.slots[idx]
	var zero T
	s.live = false
	s.v = zero
	a.free = append(a.free, idx)
	a.live--
	return true
}

// each visits live slots in index order.
func (a *arena[T]) each(fn func(idx, gen uint32, v *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		fn(uint32(i), s.gen, &s.v)
	}
}
