package event

// Pattern selects events a task is waiting for.
type Pattern interface {
	Match(e *Event) bool
}

// MatchFunc adapts a predicate to a Pattern.
type MatchFunc func(e *Event) bool

// Match implements Pattern.
func (f MatchFunc) Match(e *Event) bool {
	if e == nil {
		return false
	}
	return f(e)
}

// Wildcard matches any event type.
const Wildcard = "*"

// Any matches every event.
func Any() Pattern {
	return MatchFunc(func(*Event) bool { return true })
}

// Type matches events whose type equals one of types. "*" matches any type.
func Type(types ...string) Pattern {
	index := make(map[string]bool, len(types))
	for _, t := range types {
		if t == Wildcard {
			return Any()
		}
		index[t] = true
	}
	return MatchFunc(func(e *Event) bool { return index[e.Type] })
}

// Where matches events satisfying predicate.
func Where(predicate func(e *Event) bool) Pattern {
	return MatchFunc(predicate)
}

// AnyOf matches events matched by at least one of patterns.
func AnyOf(patterns ...Pattern) Pattern {
	return MatchFunc(func(e *Event) bool {
		for _, p := range patterns {
			if p != nil && p.Match(e) {
				return true
			}
		}
		return false
	})
}

// Not inverts pattern.
func Not(pattern Pattern) Pattern {
	return MatchFunc(func(e *Event) bool { return !pattern.Match(e) })
}
