package tenants

import "fmt"

// Composite boxed-lunch handling: a line item with this exact name carries its
// real products in its "Salad" customizations, each resolved through the
// catalog under "<salad name> - Boxed Lunch".
const (
	CompositeItemName      = "Salad Boxed Lunches"
	CompositeTypeName      = "Salad"
	compositeCatalogSuffix = " - Boxed Lunch"
)

// Profile is one tenant's CRM mapping configuration: the menu-item catalog,
// add-on aliases, pipeline and label tables, and the synthetic commission
// product. Profiles are loaded from configuration, not compiled in.
type Profile struct {
	Ref                 string            `json:"ref"`
	CommissionProductID string            `json:"commissionProductId"`
	Catalog             map[string]string `json:"catalog"`
	AddOnAliases        map[string]string `json:"addOnAliases"`
	Pipelines           map[string]string `json:"pipelines"`
	SourceLabels        map[string]string `json:"sourceLabels"`
	CityAbbrevs         map[string]string `json:"cityAbbrevs"`
}

// ResolveMenuItem maps an exact menu item name to its CRM product id.
func (p *Profile) ResolveMenuItem(name string) (string, bool) {
	id, ok := p.Catalog[name]
	return id, ok
}

// CompositeCatalogKey is the catalog key a composite customization resolves
// through.
func CompositeCatalogKey(customizationName string) string {
	return customizationName + compositeCatalogSuffix
}

// IsAddOnTarget reports whether a customization type participates in add-on
// resolution.
func (p *Profile) IsAddOnTarget(typeName string) bool {
	_, ok := p.AddOnAliases[typeName]
	return ok
}

// ResolveAddOn maps an add-on customization type through its alias to a CRM
// product id.
func (p *Profile) ResolveAddOn(typeName string) (string, bool) {
	alias, ok := p.AddOnAliases[typeName]
	if !ok {
		return "", false
	}
	id, ok := p.Catalog[alias]
	return id, ok
}

// PipelineFor returns the stageset a lead for the given order source files
// under. A miss is a diagnostic for the caller, not an error.
func (p *Profile) PipelineFor(sourceType string) (string, bool) {
	id, ok := p.Pipelines[sourceType]
	return id, ok
}

// SourceLabelFor returns the human label for an order source type, falling
// back to the raw value.
func (p *Profile) SourceLabelFor(sourceType string) (string, bool) {
	label, ok := p.SourceLabels[sourceType]
	if !ok {
		return sourceType, false
	}
	return label, true
}

// CityAbbrev shortens an event city for lead descriptions. Unknown cities get
// a generic placeholder.
func (p *Profile) CityAbbrev(city string) string {
	if abbrev, ok := p.CityAbbrevs[city]; ok {
		return abbrev
	}
	return "Other"
}

func (p *Profile) validate() error {
	if p.Ref == "" {
		return fmt.Errorf("profile ref is required")
	}
	if p.CommissionProductID == "" {
		return fmt.Errorf("profile %q: commission product id is required", p.Ref)
	}
	if len(p.Catalog) == 0 {
		return fmt.Errorf("profile %q: catalog is empty", p.Ref)
	}
	for typeName, alias := range p.AddOnAliases {
		if _, ok := p.Catalog[alias]; !ok {
			return fmt.Errorf("profile %q: add-on alias %q -> %q has no catalog entry", p.Ref, typeName, alias)
		}
	}
	return nil
}
