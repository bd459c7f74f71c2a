package catalog

import "storefront/internal/domain"

// quantities tracks the requested purchase quantity per product id.
// Values never drop below 1. Stock is not a ceiling here.
type quantities map[string]int

func newQuantities(products []domain.Product) quantities {
	q := make(quantities, len(products))
	for _, p := range products {
		q[p.ID] = 1
	}
	return q
}

func (q quantities) get(id string) (int, bool) {
	n, ok := q[id]
	return n, ok
}

func (q quantities) adjust(id string, delta int) (int, bool) {
	cur, ok := q[id]
	if !ok {
		return 0, false
	}
	next := cur + delta
	if next < 1 {
		next = 1
	}
	q[id] = next
	return next, true
}
