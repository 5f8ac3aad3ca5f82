package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyKind distinguishes properties being evaluated from comparables.
type PropertyKind string

const (
	// KindCandidate is a property the analyst may buy and flip.
	KindCandidate PropertyKind = "candidate"
	// KindReference is a renovated comparable used to price the sale.
	KindReference PropertyKind = "reference"
)

// Property is a listing tracked by an analysis.
type Property struct {
	ID              string       `yaml:"id" json:"id"`
	AnalysisID      string       `yaml:"analysis_id,omitempty" json:"analysisId,omitempty"`
	Kind            PropertyKind `yaml:"kind,omitempty" json:"kind,omitempty"`
	Title           string       `yaml:"title" json:"title"`
	Address         string       `yaml:"address,omitempty" json:"address,omitempty"`
	Neighborhood    string       `yaml:"neighborhood,omitempty" json:"neighborhood,omitempty"`
	URL             string       `yaml:"url,omitempty" json:"url,omitempty"`
	Area            float64      `yaml:"area" json:"area"`
	Price           float64      `yaml:"price" json:"price"`
	CondoFeeMonthly float64      `yaml:"condo_fee_monthly" json:"condoFeeMonthly"`
	YearlyTax       float64      `yaml:"yearly_tax" json:"yearlyTax"`
	Bedrooms        int          `yaml:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	ParkingSpots    int          `yaml:"parking_spots,omitempty" json:"parkingSpots,omitempty"`
	SimulationID    string       `yaml:"simulation_id,omitempty" json:"simulationId,omitempty"`
}

// Facts extracts the calculator inputs from the listing.
func (p Property) Facts() PropertyFacts {
	return PropertyFacts{
		Area:            p.Area,
		CondoFeeMonthly: p.CondoFeeMonthly,
		YearlyTax:       p.YearlyTax,
	}
}

// DisplayName returns the title, falling back to the ID.
func (p Property) DisplayName() string {
	if strings.TrimSpace(p.Title) != "" {
		return p.Title
	}
	return p.ID
}

// Simulation is the backend record holding one property's parameters.
type Simulation struct {
	ID         string               `json:"id"`
	PropertyID string               `json:"propertyId"`
	Parameters SimulationParameters `json:"parameters"`
}

// PriceStats summarizes the price per square meter of reference properties.
type PriceStats struct {
	Count  int             `json:"count"`
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
}
