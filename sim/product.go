package sim

import "fmt"

// Product is a single unit of goods. It has no identity beyond its fields and
// is copied by value into the warehouse and into the delivery log.
// Grouping in reports is by Name.
type Product struct {
	Name      string  `json:"name" yaml:"name"`
	Weight    float64 `json:"weight" yaml:"weight"`
	Packaging string  `json:"packaging" yaml:"packaging"`
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%.1f, %s)", p.Name, p.Weight, p.Packaging)
}

// productCount is a per-name tally that remembers first-seen order.
type productCount struct {
	Name  string
	Count int
}

// countByName groups products by Name in first-encountered order.
func countByName(products []Product) []productCount {
	index := make(map[string]int)
	var counts []productCount
	for _, p := range products {
		i, ok := index[p.Name]
		if !ok {
			i = len(counts)
			index[p.Name] = i
			counts = append(counts, productCount{Name: p.Name})
		}
		counts[i].Count++
	}
	return counts
}
