package catalog

import (
	"strings"

	"storefront/internal/domain"
)

// Section is one labelled group of a listing, in fetch order.
type Section struct {
	Label    string
	Products []domain.Product
}

// Listing is the derived, grouped view of a product set.
type Listing struct {
	Sections []Section
	Count    int
}

// Group returns the products under label, nil when the label has none.
func (l Listing) Group(label string) []domain.Product {
	for _, s := range l.Sections {
		if s.Label == label {
			return s.Products
		}
	}
	return nil
}

// Empty reports whether no product survived the filters.
func (l Listing) Empty() bool { return l.Count == 0 }

// Filter keeps products matching term (name or description, case-insensitive
// substring) and category (exact tag, or AllCategories). The input is not modified.
func Filter(products []domain.Product, term, category string) []domain.Product {
	needle := strings.ToLower(term)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		if category != AllCategories && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Group buckets products by display label. Sections appear in the order their
// first product appears; products keep their relative order.
func Group(products []domain.Product, labels Labels) Listing {
	lst := Listing{Count: len(products)}
	idx := map[string]int{}
	for _, p := range products {
		label := labels.Label(p.Category)
		i, ok := idx[label]
		if !ok {
			i = len(lst.Sections)
			idx[label] = i
			lst.Sections = append(lst.Sections, Section{Label: label})
		}
		lst.Sections[i].Products = append(lst.Sections[i].Products, p)
	}
	return lst
}

// Apply filters then groups.
func Apply(products []domain.Product, term, category string, labels Labels) Listing {
	return Group(Filter(products, term, category), labels)
}

// Option is a category selector entry.
type Option struct {
	Value string
	Label string
}

// Options lists the distinct non-empty categories of products in first-seen order.
func Options(products []domain.Product, labels Labels) []Option {
	var out []Option
	seen := map[string]bool{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, Option{Value: p.Category, Label: labels.Label(p.Category)})
	}
	return out
}
