package record

import "sort"

// DateField is the header name carrying each row's calendar date.
const DateField = "date"

// Record maps field names to typed values. Field sets vary per import.
type Record map[string]Value

// Get returns the named field, or Missing when the row had no cell for it.
func (r Record) Get(name string) Value {
	v, ok := r[name]
	if !ok {
		return Missing()
	}
	return v
}

// Date returns the raw date string of the record.
func (r Record) Date() (string, bool) {
	v := r.Get(DateField)
	if v.IsMissing() {
		return "", false
	}
	return v.String(), true
}

// Fields returns the record's field names in lexical order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
