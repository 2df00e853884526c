package extract

// rule is one step of an ordered extraction cascade. apply reports false
// when the rule does not fire, letting the cascade move on.
type rule[T any] struct {
	name  string
	apply func(doc *Document) (T, bool)
}

// cascade evaluates rules in order and returns the value of the first rule
// that fires together with its name. When no rule fires the fallback value
// is returned under the name "default".
func cascade[T any](doc *Document, rules []rule[T], fallback T) (T, string) {
	for _, r := range rules {
		if v, ok := r.apply(doc); ok {
			return v, r.name
		}
	}
	return fallback, "default"
}
