package sim

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FactorySpec describes one factory in a catalog.
type FactorySpec struct {
	Name    string `yaml:"name"`
	Product string `yaml:"product"` // name of a catalog product
	Rate    int    `yaml:"rate"`    // products per tick
}

// TruckSpec describes one truck in a catalog.
type TruckSpec struct {
	Model    string `yaml:"model"`
	Capacity int    `yaml:"capacity"`
}

// Catalog is the seed data of a run: the product templates, the factories
// producing them and the trucks, in registration order.
type Catalog struct {
	Products  []Product     `yaml:"products"`
	Factories []FactorySpec `yaml:"factories"`
	Trucks    []TruckSpec   `yaml:"trucks"`
}

// DefaultCatalog returns the built-in seed data: three products, one factory
// per product and three trucks of increasing size.
func DefaultCatalog() Catalog {
	return Catalog{
		Products: []Product{
			{Name: "Product A", Weight: 10, Packaging: "Standard"},
			{Name: "Product B", Weight: 15, Packaging: "Wooden box"},
			{Name: "Product C", Weight: 8, Packaging: "Plastic box"},
		},
		Factories: []FactorySpec{
			{Name: "Factory 1", Product: "Product A", Rate: 50},
			{Name: "Factory 2", Product: "Product B", Rate: 55},
			{Name: "Factory 3", Product: "Product C", Rate: 60},
		},
		Trucks: []TruckSpec{
			{Model: "Small Truck", Capacity: 100},
			{Model: "Medium Truck", Capacity: 150},
			{Model: "Large Truck", Capacity: 200},
		},
	}
}

// LoadCatalog reads and parses a YAML catalog file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}
	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// WriteYAML encodes the catalog as YAML.
func (c Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}

// Validate checks names, rates and capacities, and that every factory
// refers to a known product.
func (c Catalog) Validate() error {
	products := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("%w: products[%d]: name required", ErrInvalidConfig, i)
		}
		if products[p.Name] {
			return fmt.Errorf("%w: products[%d]: duplicate name %q", ErrInvalidConfig, i, p.Name)
		}
		products[p.Name] = true
	}
	if len(c.Factories) == 0 {
		return fmt.Errorf("%w: at least one factory required", ErrInvalidConfig)
	}
	for i, f := range c.Factories {
		prefix := fmt.Sprintf("factories[%d]", i)
		if f.Name == "" {
			return fmt.Errorf("%w: %s: name required", ErrInvalidConfig, prefix)
		}
		if !products[f.Product] {
			return fmt.Errorf("%w: %s: unknown product %q", ErrInvalidConfig, prefix, f.Product)
		}
		if f.Rate <= 0 {
			return fmt.Errorf("%w: %s: rate must be positive, got %d", ErrInvalidConfig, prefix, f.Rate)
		}
	}
	if len(c.Trucks) == 0 {
		return fmt.Errorf("%w: at least one truck required", ErrInvalidConfig)
	}
	for i, t := range c.Trucks {
		prefix := fmt.Sprintf("trucks[%d]", i)
		if t.Model == "" {
			return fmt.Errorf("%w: %s: model required", ErrInvalidConfig, prefix)
		}
		if t.Capacity <= 0 {
			return fmt.Errorf("%w: %s: capacity must be positive, got %d", ErrInvalidConfig, prefix, t.Capacity)
		}
	}
	return nil
}

// product returns the catalog product with the given name.
func (c Catalog) product(name string) (Product, bool) {
	for _, p := range c.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
