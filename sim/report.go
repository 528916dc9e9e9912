// Computes and presents end-of-run delivery statistics from the delivery log.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ProductStat is the delivery tally of one product.
type ProductStat struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	// AveragePerDelivery is Total divided by the number of deliveries,
	// including deliveries that carried none of this product.
	AveragePerDelivery float64 `json:"average_per_delivery"`
}

// Report is the result of a run.
// The delivery fields are computed by Summarize; the run metadata is filled
// in by the Simulation.
type Report struct {
	RunID          string         `json:"run_id,omitempty"`
	State          string         `json:"state,omitempty"`
	SimulatedHours int            `json:"simulated_hours"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Error          string         `json:"error,omitempty"`
	Warehouse      WarehouseStats `json:"warehouse"`
	Factories      []FactoryStats `json:"factories,omitempty"`

	Deliveries int  `json:"deliveries"`
	TotalItems int  `json:"total_items"`
	HasData    bool `json:"has_data"`
	// AverageLoad is TotalItems / Deliveries; zero when HasData is false.
	AverageLoad  float64       `json:"average_load"`
	Products     []ProductStat `json:"products"`
	MostFrequent *ProductStat  `json:"most_frequent,omitempty"`
}

// Summarize computes the delivery statistics of a log.
// Safe for nil or empty logs: HasData is false and MostFrequent is nil.
func Summarize(log *DeliveryLog) *Report {
	report := &Report{Products: make([]ProductStat, 0)}
	if log == nil || log.Len() == 0 {
		return report
	}

	report.Deliveries = log.Len()
	report.HasData = true

	index := make(map[string]int)
	for _, d := range log.Entries() {
		report.TotalItems += len(d.Items)
		for _, p := range d.Items {
			i, ok := index[p.Name]
			if !ok {
				i = len(report.Products)
				index[p.Name] = i
				report.Products = append(report.Products, ProductStat{Name: p.Name})
			}
			report.Products[i].Total++
		}
	}
	report.AverageLoad = float64(report.TotalItems) / float64(report.Deliveries)

	for i := range report.Products {
		ps := &report.Products[i]
		ps.AveragePerDelivery = float64(ps.Total) / float64(report.Deliveries)
		// strict comparison keeps the first-encountered product on ties
		if report.MostFrequent == nil || ps.AveragePerDelivery > report.MostFrequent.AveragePerDelivery {
			best := *ps
			report.MostFrequent = &best
		}
	}
	return report
}

// Print writes the human-readable report.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Delivery Statistics ===")
	fmt.Fprintf(w, "Trucks dispatched    : %d\n", r.Deliveries)
	if !r.HasData {
		fmt.Fprintln(w, "Average load         : n/a")
		fmt.Fprintln(w, "Most frequent product: none")
		return
	}
	fmt.Fprintf(w, "Units delivered      : %d\n", r.TotalItems)
	fmt.Fprintf(w, "Average load         : %.2f units\n", r.AverageLoad)
	for _, ps := range r.Products {
		fmt.Fprintf(w, "- %s: %d units, %.2f per trip on average\n", ps.Name, ps.Total, ps.AveragePerDelivery)
	}
	if r.MostFrequent != nil {
		fmt.Fprintf(w, "Most frequent product: %s, %.2f per trip on average\n",
			r.MostFrequent.Name, r.MostFrequent.AveragePerDelivery)
	}
}

// SaveJSON writes the report as indented JSON to path.
func (r *Report) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logrus.Debugf("Successfully wrote results to '%s'", path)
	return nil
}
