// Package strx holds defaulting helpers for config params.
package strx

// Coalesce returns s if non-empty, otherwise d.
func Coalesce(s, d string) string { return Or(s, d) }

// Or returns v unless it is the zero value of T, in which case d.
func Or[T comparable](v, d T) T {
	var zero T
	if v == zero {
		return d
	}
	return v
}
