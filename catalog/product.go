package catalog

import "time"

// Status is the lifecycle state of a product
type Status string

const (
	StatusActive       Status = "active"
	StatusDiscontinued Status = "discontinued"
)

// Product is a sellable catalog item. Version is bumped on every update
// and must match the stored version for an update to succeed.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Price     float64   `json:"price" validate:"gte=0"`
	Quantity  int64     `json:"quantity" validate:"gte=0"`
	Status    Status    `json:"status" validate:"oneof=active discontinued"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) GetID() string      { return p.ID }
func (p *Product) SetID(id string)    { p.ID = id }
func (p *Product) GetVersion() int64  { return p.Version }
func (p *Product) SetVersion(v int64) { p.Version = v }
func (p *Product) Active() bool       { return p.Status == StatusActive }

// Preserve keeps the creation time of the stored product
func (p *Product) Preserve(stored *Product) { p.CreatedAt = stored.CreatedAt }

// Clone returns a copy of p
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// Facts exposes p to expression rules under the "Product" object
func (p *Product) Facts() map[string]any {
	return map[string]any{
		"Product": map[string]any{
			"Name":     p.Name,
			"Price":    p.Price,
			"Quantity": p.Quantity,
			"Status":   string(p.Status),
		},
	}
}
