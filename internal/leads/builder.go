package leads

import (
	"fmt"
	"sort"
	"time"

	"github.com/forkandfield/catersync/internal/tenants"
	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/ezmanage"
	"github.com/forkandfield/catersync/pkg/nutshell"
)

// BuildResult is an assembled lead payload plus any non-fatal mapping
// diagnostics collected along the way.
type BuildResult struct {
	Lead     *nutshell.Lead
	Warnings []string
}

// LeadBuilder assembles CRM lead payloads from order snapshots and tenant
// configuration.
type LeadBuilder struct {
	profile *tenants.Profile
	mapper  *ProductMapper
}

func NewLeadBuilder(profile *tenants.Profile) *LeadBuilder {
	return &LeadBuilder{profile: profile, mapper: NewProductMapper(profile)}
}

// Build maps the order to catalog products, appends the commission line, and
// fills in description, note, pipeline, assignee, and tags. The tags argument
// is the final set to apply; empty means leave tags untouched.
func (b *LeadBuilder) Build(snapshot *ezmanage.Snapshot, account *models.Account, tags []string) (*BuildResult, error) {
	var warnings []string

	aggregated := b.mapper.Aggregate(snapshot.Cart.LineItems)
	for _, key := range aggregated.InvalidKeys {
		warnings = append(warnings, fmt.Sprintf("unmapped menu item %q", key))
	}

	products := make([]nutshell.LeadProduct, 0, len(aggregated.Products)+1)
	for _, product := range aggregated.Products {
		products = append(products, nutshell.LeadProduct{
			Product:  nutshell.ProductRef{ID: product.ProductID},
			Quantity: product.Quantity,
		})
	}
	products = append(products, CommissionLine(b.profile, snapshot))

	description, warning, err := b.description(snapshot)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		warnings = append(warnings, warning)
	}

	lead := &nutshell.Lead{
		Products:    products,
		Description: description,
		Note:        fmt.Sprintf("EzManage order %s", snapshot.OrderNumber),
		CustomFields: map[string]string{
			"Order Number": snapshot.OrderNumber,
		},
	}

	if pipelineID, ok := b.profile.PipelineFor(snapshot.SourceType); ok {
		lead.StagesetID = pipelineID
	} else {
		warnings = append(warnings, fmt.Sprintf("no pipeline mapped for source type %q", snapshot.SourceType))
	}

	for _, route := range account.UserRoutes {
		if route.City == snapshot.Caterer.City {
			lead.Assignee = &nutshell.EntityRef{EntityType: "Users", ID: int64(route.CRMUserID)}
			break
		}
	}

	if len(tags) > 0 {
		lead.Tags = tags
	}

	return &BuildResult{Lead: lead, Warnings: warnings}, nil
}

// description renders the lead name: "<source label> <MM/DD/YY> <city>".
func (b *LeadBuilder) description(snapshot *ezmanage.Snapshot) (string, string, error) {
	eventAt, err := time.Parse(time.RFC3339, snapshot.Event.Timestamp)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err,
			fmt.Sprintf("unparseable event timestamp %q", snapshot.Event.Timestamp))
	}

	label, mapped := b.profile.SourceLabelFor(snapshot.SourceType)
	warning := ""
	if !mapped {
		warning = fmt.Sprintf("unmapped order source type %q", snapshot.SourceType)
	}

	city := b.profile.CityAbbrev(snapshot.Caterer.City)
	return fmt.Sprintf("%s %s %s", label, eventAt.Format("01/02/06"), city), warning, nil
}

// MergeTags unions tag sets case-sensitively, de-duplicating and sorting the
// result. Merging the same sets again yields the same slice.
func MergeTags(sets ...[]string) []string {
	seen := map[string]struct{}{}
	var merged []string
	for _, set := range sets {
		for _, tag := range set {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	sort.Strings(merged)
	return merged
}
