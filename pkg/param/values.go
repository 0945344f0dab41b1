package param

// Values holds the parameters the user actually supplied. Absence and
// zero value are distinct: a bool parameter set to false is present in
// the map, an omitted one is not. Builders consult Has before reading so
// that omitted parameters never reach the proposed state.
type Values map[string]any

// Has reports whether the parameter was supplied.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the parameter's string value, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the parameter's bool value, or false when absent.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Int returns the parameter's int value, or 0 when absent.
func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

// supplied returns the subset of names present in v, preserving order.
func (v Values) supplied(names []string) []string {
	var out []string
	for _, n := range names {
		if v.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
