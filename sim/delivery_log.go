package sim

// Delivery is one truck load recorded by the dispatcher.
type Delivery struct {
	Cycle int       `json:"cycle"` // 1-based dispatch cycle index
	Truck string    `json:"truck"`
	Items []Product `json:"-"`
}

// DeliveryLog is the ordered record of every truck load in a run.
// Entries are appended in the order dispatch cycles complete, and within a
// cycle in truck registration order.
// Written only by the dispatcher goroutine; read after it has exited.
type DeliveryLog struct {
	entries []Delivery
}

// NewDeliveryLog creates an empty log.
func NewDeliveryLog() *DeliveryLog {
	return &DeliveryLog{entries: make([]Delivery, 0)}
}

// Record appends a delivery.
func (l *DeliveryLog) Record(d Delivery) {
	l.entries = append(l.entries, d)
}

// Entries returns the deliveries for iteration.
// The returned slice is the log's internal storage and MUST NOT be modified.
func (l *DeliveryLog) Entries() []Delivery {
	return l.entries
}

// Len returns the number of deliveries.
func (l *DeliveryLog) Len() int {
	return len(l.entries)
}

// TotalItems returns the number of products across all deliveries.
func (l *DeliveryLog) TotalItems() int {
	total := 0
	for _, d := range l.entries {
		total += len(d.Items)
	}
	return total
}
