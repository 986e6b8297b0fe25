package main

import (
	"github.com/liamcoop/rulepipeline/catalog"
	"github.com/liamcoop/rulepipeline/rules"
)

// ProductRequest is the body of create, update and validate requests
type ProductRequest struct {
	Name     string         `json:"name" example:"Widget"`
	Price    float64        `json:"price" example:"9.99"`
	Quantity int64          `json:"quantity" example:"10"`
	Status   catalog.Status `json:"status,omitempty" example:"active"`
	Version  int64          `json:"version,omitempty" example:"1"`
} // @name ProductRequest

func (r ProductRequest) toProduct(id string) *catalog.Product {
	return &catalog.Product{
		ID:       id,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		Status:   r.Status,
		Version:  r.Version,
	}
}

// ShipRequest is the body of a ship request
type ShipRequest struct {
	Quantity int64 `json:"quantity" example:"2"`
} // @name ShipRequest

// ValidationResponse reports the outcome of a validation-only request
type ValidationResponse struct {
	Valid  bool                     `json:"valid"`
	Errors []rules.ValidationResult `json:"errors"`
} // @name ValidationResponse

// HealthResponse reports server health and pipeline counters
type HealthResponse struct {
	Status   string           `json:"status" example:"healthy"`
	Store    string           `json:"store" example:"memory"`
	Counters map[string]int64 `json:"counters"`
} // @name HealthResponse
