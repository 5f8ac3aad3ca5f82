package transform

import (
	"testing"
)

func TestTemplateRegistry_RegisterAndGet(t *testing.T) {
	registry := NewTemplateRegistry()

	template := Template{
		Name:        "test_template",
		Description: "A test template",
		Transforms:  []ParameterTransform{},
	}

	registry.Register(template)

	retrieved, ok := registry.Get("test_template")
	if !ok {
		t.Fatal("Expected to find template")
	}
	if retrieved.Name != template.Name {
		t.Errorf("Expected name %s, got %s", template.Name, retrieved.Name)
	}

	// Case-insensitive
	if _, ok = registry.Get("TEST_TEMPLATE"); !ok {
		t.Fatal("Expected case-insensitive lookup to work")
	}

	if _, ok = registry.Get("nonexistent"); ok {
		t.Error("Expected not to find nonexistent template")
	}
}

func TestCreateBuiltInTemplates(t *testing.T) {
	registry := CreateBuiltInTemplates()

	expected := []string{
		"cash_purchase",
		"delay_sale_12m",
		"delay_sale_6m",
		"price_cut_10pct",
		"price_cut_5pct",
		"rate_up_2pts",
		"renovation_overrun_20pct",
		"sell_fast_3m",
		"tax_exempt",
	}

	names := registry.List()
	if len(names) != len(expected) {
		t.Fatalf("Expected %d templates, got %d: %v", len(expected), len(names), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Expected template %s at %d, got %s", name, i, names[i])
		}
	}
}

func TestBuiltInTemplates_Apply(t *testing.T) {
	registry := CreateBuiltInTemplates()
	base := createTestParams()

	for _, name := range registry.List() {
		t.Run(name, func(t *testing.T) {
			tmpl, _ := registry.Get(name)
			result, err := ApplyTransforms(base, tmpl.Transforms)
			if err != nil {
				t.Fatalf("Template %s failed: %v", name, err)
			}
			if result == base {
				t.Errorf("Template %s should change the parameters", name)
			}
		})
	}
}

func TestBuiltInTemplates_PriceCut(t *testing.T) {
	tmpl, ok := CreateBuiltInTemplates().Get("price_cut_5pct")
	if !ok {
		t.Fatal("Expected price_cut_5pct template")
	}

	result, err := ApplyTransforms(createTestParams(), tmpl.Transforms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.SalePrice != 889200 {
		t.Errorf("Expected sale price 889200, got %v", result.SalePrice)
	}
}

func TestParseTemplateList(t *testing.T) {
	names := ParseTemplateList(" sell_fast_3m, ,delay_sale_6m,")
	if len(names) != 2 || names[0] != "sell_fast_3m" || names[1] != "delay_sale_6m" {
		t.Errorf("Unexpected template list: %v", names)
	}
	if got := ParseTemplateList(""); len(got) != 0 {
		t.Errorf("Expected no templates, got %v", got)
	}
}
