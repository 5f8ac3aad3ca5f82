package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ParameterTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_parameter", createSetParameter)
	registry.Register("adjust_sale_price", createAdjustSalePrice)
	registry.Register("adjust_purchase_price", createAdjustPurchasePrice)
	registry.Register("delay_sale", createDelaySale)
	registry.Register("set_months_to_sell", createSetMonthsToSell)
	registry.Register("set_financing_rate", createSetFinancingRate)
	registry.Register("cash_purchase", createCashPurchase)
	registry.Register("renovation_overrun", createRenovationOverrun)
	registry.Register("set_income_tax", createSetIncomeTax)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ParameterTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms in sorted order.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "delay_sale:months=6". Transforms without parameters may omit the colon.
func (r *TransformRegistry) ParseTransformSpec(spec string) (ParameterTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

func requireFloat(transform string, params map[string]string, key string) (float64, error) {
	s, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func requireInt(transform string, params map[string]string, key string) (int, error) {
	s, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// Factory functions for each transform

func createSetParameter(params map[string]string) (ParameterTransform, error) {
	name, ok := params["name"]
	if !ok {
		return nil, fmt.Errorf("set_parameter requires 'name' parameter")
	}
	value, err := requireFloat("set_parameter", params, "value")
	if err != nil {
		return nil, err
	}
	return &SetParameter{Parameter: name, Value: value}, nil
}

func createAdjustSalePrice(params map[string]string) (ParameterTransform, error) {
	pct, err := requireFloat("adjust_sale_price", params, "pct")
	if err != nil {
		return nil, err
	}
	return &AdjustSalePrice{Percent: pct}, nil
}

func createAdjustPurchasePrice(params map[string]string) (ParameterTransform, error) {
	pct, err := requireFloat("adjust_purchase_price", params, "pct")
	if err != nil {
		return nil, err
	}
	return &AdjustPurchasePrice{Percent: pct}, nil
}

func createDelaySale(params map[string]string) (ParameterTransform, error) {
	months, err := requireInt("delay_sale", params, "months")
	if err != nil {
		return nil, err
	}
	return &DelaySale{Months: months}, nil
}

func createSetMonthsToSell(params map[string]string) (ParameterTransform, error) {
	months, err := requireInt("set_months_to_sell", params, "months")
	if err != nil {
		return nil, err
	}
	return &SetMonthsToSell{Months: months}, nil
}

func createSetFinancingRate(params map[string]string) (ParameterTransform, error) {
	if delta, ok := params["delta"]; ok {
		v, err := strconv.ParseFloat(delta, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid delta value: %w", err)
		}
		return &SetFinancingRate{Rate: v, Relative: true}, nil
	}
	rate, err := requireFloat("set_financing_rate", params, "rate")
	if err != nil {
		return nil, err
	}
	return &SetFinancingRate{Rate: rate}, nil
}

func createCashPurchase(params map[string]string) (ParameterTransform, error) {
	return &CashPurchase{}, nil
}

func createRenovationOverrun(params map[string]string) (ParameterTransform, error) {
	pct, err := requireFloat("renovation_overrun", params, "pct")
	if err != nil {
		return nil, err
	}
	return &RenovationOverrun{Percent: pct}, nil
}

func createSetIncomeTax(params map[string]string) (ParameterTransform, error) {
	s, ok := params["applies"]
	if !ok {
		return nil, fmt.Errorf("set_income_tax requires 'applies' parameter")
	}
	applies, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid applies value (expected true/false): %w", err)
	}
	return &SetIncomeTax{Applies: applies}, nil
}
