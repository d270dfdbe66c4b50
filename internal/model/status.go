package model

import "fmt"

// ProductStatus is the lifecycle state of a product, stored as a single character.
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "A"
	ProductStatusDeleted ProductStatus = "D"
)

// transitions lists every allowed move. DELETED has no outgoing edge.
var transitions = map[ProductStatus][]ProductStatus{
	ProductStatusActive: {ProductStatusDeleted},
}

func (s ProductStatus) String() string {
	switch s {
	case ProductStatusActive:
		return "ACTIVE"
	case ProductStatusDeleted:
		return "DELETED"
	default:
		return fmt.Sprintf("UNKNOWN(%s)", string(s))
	}
}

// Validate returns an error for values outside the enum.
func (s ProductStatus) Validate() error {
	switch s {
	case ProductStatusActive, ProductStatusDeleted:
		return nil
	default:
		return fmt.Errorf("invalid product status: %q", string(s))
	}
}

// IsTerminal reports whether no transition leaves s.
func (s ProductStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ProductStatus) CanTransitionTo(next ProductStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
