package transform

import (
	"sort"
	"strings"
)

// TemplateRegistry manages built-in scenario templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ParameterTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates creates a template registry with common flip scenarios
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	// Holding period
	registry.Register(Template{
		Name:        "sell_fast_3m",
		Description: "Sell after only 3 months",
		Transforms:  []ParameterTransform{&SetMonthsToSell{Months: 3}},
	})
	registry.Register(Template{
		Name:        "delay_sale_6m",
		Description: "Sale takes 6 months longer",
		Transforms:  []ParameterTransform{&DelaySale{Months: 6}},
	})
	registry.Register(Template{
		Name:        "delay_sale_12m",
		Description: "Sale takes 12 months longer",
		Transforms:  []ParameterTransform{&DelaySale{Months: 12}},
	})

	// Market
	registry.Register(Template{
		Name:        "price_cut_5pct",
		Description: "Sell 5% below the planned price",
		Transforms:  []ParameterTransform{&AdjustSalePrice{Percent: -5}},
	})
	registry.Register(Template{
		Name:        "price_cut_10pct",
		Description: "Sell 10% below the planned price",
		Transforms:  []ParameterTransform{&AdjustSalePrice{Percent: -10}},
	})

	// Financing
	registry.Register(Template{
		Name:        "cash_purchase",
		Description: "Buy without financing",
		Transforms:  []ParameterTransform{&CashPurchase{}},
	})
	registry.Register(Template{
		Name:        "rate_up_2pts",
		Description: "Financing rate 2 points higher",
		Transforms:  []ParameterTransform{&SetFinancingRate{Rate: 2, Relative: true}},
	})

	// Costs and tax
	registry.Register(Template{
		Name:        "renovation_overrun_20pct",
		Description: "Renovation runs 20% over budget",
		Transforms:  []ParameterTransform{&RenovationOverrun{Percent: 20}},
	})
	registry.Register(Template{
		Name:        "tax_exempt",
		Description: "Gain exempt from income tax",
		Transforms:  []ParameterTransform{&SetIncomeTax{Applies: false}},
	})

	return registry
}

// ParseTemplateList splits a comma-separated list of template names,
// dropping blanks.
func ParseTemplateList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
