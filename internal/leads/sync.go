package leads

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/forkandfield/catersync/internal/tenants"
	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/ezmanage"
	"github.com/forkandfield/catersync/pkg/logger"
	"github.com/forkandfield/catersync/pkg/metrics"
	"github.com/forkandfield/catersync/pkg/nutshell"
)

var subtotalTolerance = decimal.NewFromFloat(0.01)

// CRMClient is the slice of the Nutshell API the sync service needs.
type CRMClient interface {
	NewLead(ctx context.Context, ref string, lead *nutshell.Lead) (*nutshell.LeadResult, error)
	GetLead(ctx context.Context, ref string, leadID int64) (*nutshell.LeadResult, error)
	EditLead(ctx context.Context, ref string, leadID int64, rev string, lead *nutshell.Lead) (*nutshell.EditResult, error)
}

// SyncResult is the outcome of a lead creation, including reconciliation
// diagnostics.
type SyncResult struct {
	CRMID           string
	Description     string
	IsSubtotalMatch bool
	Tags            []string
	Warnings        []string
}

// UpdateResult is the outcome of a lead update.
type UpdateResult struct {
	Description string
	Warnings    []string
}

// SyncService creates and updates CRM leads for orders. Every operation is
// tenant-scoped: a ref with no registered mapping profile fails before any
// network call.
type SyncService struct {
	crm      CRMClient
	registry *tenants.Registry
	logg     *logger.Logger
	metrics  *metrics.WebhookMetrics
}

func NewSyncService(crm CRMClient, registry *tenants.Registry, logg *logger.Logger, m *metrics.WebhookMetrics) *SyncService {
	return &SyncService{crm: crm, registry: registry, logg: logg, metrics: m}
}

// Create builds and creates a lead for the order, then reconciles the CRM's
// stored product subtotal against the order subtotal.
func (s *SyncService) Create(ctx context.Context, account *models.Account, snapshot *ezmanage.Snapshot) (*SyncResult, error) {
	profile, err := s.registry.Lookup(account.Ref)
	if err != nil {
		s.metrics.IncCRMSync("create", "unsupported_ref")
		return nil, err
	}

	built, err := NewLeadBuilder(profile).Build(snapshot, account, account.RequiredTags())
	if err != nil {
		return nil, err
	}
	s.recordBuildWarnings(ctx, snapshot, built.Warnings)

	created, err := s.crm.NewLead(ctx, account.Ref, built.Lead)
	if err != nil {
		s.metrics.IncCRMSync("create", "error")
		return nil, err
	}
	s.metrics.IncCRMSync("create", "success")

	match := subtotalMatch(created.Products, profile.CommissionProductID, snapshot.Totals.SubTotalCents)
	if !match {
		s.metrics.IncSubtotalMismatch()
	}

	return &SyncResult{
		CRMID:           strconv.FormatInt(created.ID, 10),
		Description:     created.Description,
		IsSubtotalMatch: match,
		Tags:            created.Tags,
		Warnings:        built.Warnings,
	}, nil
}

// Update rebuilds the lead and rewrites it in place. Existing CRM tags are
// preserved by merging them with the required set and any extra tags the
// caller carries over.
func (s *SyncService) Update(ctx context.Context, account *models.Account, snapshot *ezmanage.Snapshot, crmID string, additionalTags []string) (*UpdateResult, error) {
	profile, err := s.registry.Lookup(account.Ref)
	if err != nil {
		s.metrics.IncCRMSync("update", "unsupported_ref")
		return nil, err
	}

	leadID, err := strconv.ParseInt(crmID, 10, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
			fmt.Sprintf("stored crm id %q is not a lead id", crmID))
	}

	existing, err := s.crm.GetLead(ctx, account.Ref, leadID)
	if err != nil {
		s.metrics.IncCRMSync("update", "error")
		return nil, err
	}

	tags := MergeTags(account.RequiredTags(), existing.Tags, additionalTags)
	built, err := NewLeadBuilder(profile).Build(snapshot, account, tags)
	if err != nil {
		return nil, err
	}
	s.recordBuildWarnings(ctx, snapshot, built.Warnings)

	edited, err := s.crm.EditLead(ctx, account.Ref, leadID, existing.Rev, built.Lead)
	if err != nil {
		s.metrics.IncCRMSync("update", "error")
		return nil, err
	}
	s.metrics.IncCRMSync("update", "success")

	return &UpdateResult{Description: edited.Description, Warnings: built.Warnings}, nil
}

func (s *SyncService) recordBuildWarnings(ctx context.Context, snapshot *ezmanage.Snapshot, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	s.metrics.IncUnmappedProducts(len(warnings))
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, snapshot.UUID)
		for _, warning := range warnings {
			s.logg.Warn(ctx, warning)
		}
	}
}

// subtotalMatch compares the CRM's catalog-priced product total against the
// order subtotal within one cent, symmetrically. The commission line carries a
// derived override price, so it stays out of the comparison.
func subtotalMatch(products []nutshell.LeadProductResult, commissionProductID string, subTotalCents int) bool {
	sum := decimal.Zero
	for _, product := range products {
		if product.Product.ID == commissionProductID {
			continue
		}
		sum = sum.Add(product.Price.Amount.Mul(decimal.NewFromInt(int64(product.Quantity))))
	}
	subtotal := decimal.NewFromInt(int64(subTotalCents)).Div(centsPerDollar)
	return sum.Sub(subtotal).Abs().LessThan(subtotalTolerance)
}
