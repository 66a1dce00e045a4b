package commit

import "golang.org/x/text/cases"

// Footer is an ordered mapping of footer tokens to values. Conventional
// Commits treats footer tokens case insensitively, so lookups fold the key
// while iteration returns keys as they were first written.
type Footer struct {
	keys   []string
	values map[string]string // key as written -> value
	folded map[string]string // folded key -> key as written
}

// NewFooter returns an empty Footer.
func NewFooter() *Footer {
	return &Footer{
		values: make(map[string]string),
		folded: make(map[string]string),
	}
}

func foldKey(key string) string {
	return cases.Fold().String(key)
}

// Set stores value under key. If a key that differs only in case is already
// present, its value is replaced and it keeps its first casing and
// position.
func (f *Footer) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
		f.folded = make(map[string]string)
	}
	fk := foldKey(key)
	if orig, ok := f.folded[fk]; ok {
		f.values[orig] = value
		return
	}
	f.folded[fk] = key
	f.values[key] = value
	f.keys = append(f.keys, key)
}

// Get returns the value stored under any casing of key.
func (f *Footer) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	orig, ok := f.folded[foldKey(key)]
	if !ok {
		return "", false
	}
	return f.values[orig], true
}

// Value is like Get, returning "" when key is absent.
func (f *Footer) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

func (f *Footer) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

func (f *Footer) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

func (f *Footer) Empty() bool { return f.Len() == 0 }

// Keys returns the keys in insertion order.
func (f *Footer) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (f *Footer) Range(fn func(key, value string) bool) {
	if f == nil {
		return
	}
	for _, k := range f.keys {
		if !fn(k, f.values[k]) {
			return
		}
	}
}
