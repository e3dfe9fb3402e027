package domain

// Default sizing for Fields. Eight pairs matches what a typical log event
// carries (level, message, target, file, line and a few attributes).
const (
	DefaultInlinePairs = 8
	DefaultCapacity    = 8
)

// Pair is one key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Fields is an insertion-ordered string map with unique keys.
//
// Up to inline pairs are kept in a preallocated slice and looked up by a
// linear scan. Past that threshold an index map is built and maintained
// alongside the slice. A non-zero capacity is a hard limit: inserting a new
// key into a full Fields fails with a *CapacityError.
//
// The zero value is an empty, unbounded Fields that indexes from the first pair.
type Fields struct {
	pairs    []Pair
	index    map[string]int
	inline   int
	capacity int
}

// NewFields returns an empty Fields. inline is the number of pairs stored
// before spilling to an index (commonly 0, 2, 4, 8 or 16); capacity is the
// maximum number of pairs, 0 meaning unbounded.
func NewFields(inline, capacity int) Fields {
	if inline < 0 {
		inline = 0
	}
	if capacity < 0 {
		capacity = 0
	}
	prealloc := inline
	if capacity > 0 && capacity < prealloc {
		prealloc = capacity
	}
	return Fields{
		pairs:    make([]Pair, 0, prealloc),
		inline:   inline,
		capacity: capacity,
	}
}

// Len returns the number of pairs.
func (f *Fields) Len() int {
	return len(f.pairs)
}

// Capacity returns the hard limit on pairs, 0 if unbounded.
func (f *Fields) Capacity() int {
	return f.capacity
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (string, bool) {
	if i := f.lookup(key); i >= 0 {
		return f.pairs[i].Value, true
	}
	return "", false
}

// TryInsert stores value under key. An existing key keeps its position and
// has its value replaced. A new key is appended, or rejected with a
// *CapacityError when the Fields is full.
func (f *Fields) TryInsert(key, value string) error {
	if i := f.lookup(key); i >= 0 {
		f.pairs[i].Value = value
		return nil
	}
	if f.capacity > 0 && len(f.pairs) >= f.capacity {
		return &CapacityError{Key: key, Value: value}
	}
	f.pairs = append(f.pairs, Pair{Key: key, Value: value})
	switch {
	case f.index != nil:
		f.index[key] = len(f.pairs) - 1
	case len(f.pairs) > f.inline:
		f.spill()
	}
	return nil
}

// Insert is TryInsert that ignores capacity errors.
func (f *Fields) Insert(key, value string) {
	_ = f.TryInsert(key, value)
}

// Remove deletes key, keeping the order of the remaining pairs.
// It reports whether the key was present.
func (f *Fields) Remove(key string) bool {
	i := f.lookup(key)
	if i < 0 {
		return false
	}
	f.pairs = append(f.pairs[:i], f.pairs[i+1:]...)
	if f.index == nil {
		return true
	}
	if len(f.pairs) <= f.inline {
		f.index = nil
		return true
	}
	delete(f.index, key)
	for j := i; j < len(f.pairs); j++ {
		f.index[f.pairs[j].Key] = j
	}
	return true
}

// Range calls fn for every pair in insertion order until fn returns false.
func (f *Fields) Range(fn func(key, value string) bool) {
	for _, p := range f.pairs {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Pairs returns the pairs in insertion order. The slice is shared with f and
// must not be modified.
func (f *Fields) Pairs() []Pair {
	return f.pairs
}

// Clone returns a deep copy with the same sizing.
func (f *Fields) Clone() Fields {
	c := Fields{
		pairs:    make([]Pair, len(f.pairs), max(cap(f.pairs), len(f.pairs))),
		inline:   f.inline,
		capacity: f.capacity,
	}
	copy(c.pairs, f.pairs)
	if f.index != nil {
		c.spill()
	}
	return c
}

func (f *Fields) lookup(key string) int {
	if f.index != nil {
		if i, ok := f.index[key]; ok {
			return i
		}
		return -1
	}
	for i := range f.pairs {
		if f.pairs[i].Key == key {
			return i
		}
	}
	return -1
}

func (f *Fields) spill() {
	f.index = make(map[string]int, 2*len(f.pairs))
	for i, p := range f.pairs {
		f.index[p.Key] = i
	}
}
