package styles

// Table hands out ids for sub-resources such as fills or number formats.
// Ids start at first; the ids below it are reserved for built-ins.
type Table struct {
	first int
	ids   map[string]int
	keys  []string
}

func NewTable(first int) *Table {
	return &Table{first: first, ids: make(map[string]int)}
}

// ID returns the id of key, registering it on first use.
func (t *Table) ID(key string) int {
	if id, ok := t.ids[key]; ok {
		return id
	}
	id := t.first + len(t.keys)
	t.ids[key] = id
	t.keys = append(t.keys, key)
	return id
}

// Lookup returns the id of an already registered key.
func (t *Table) Lookup(key string) (int, bool) {
	id, ok := t.ids[key]
	return id, ok
}

// Keys returns the registered keys in id order.
func (t *Table) Keys() []string { return t.keys }

func (t *Table) Len() int { return len(t.keys) }
