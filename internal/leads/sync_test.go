package leads

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkandfield/catersync/internal/tenants"
	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/logger"
	"github.com/forkandfield/catersync/pkg/nutshell"
)

type stubCRM struct {
	newLeadCalls  int
	getLeadCalls  int
	editLeadCalls int

	lastLead *nutshell.Lead

	newLeadResult *nutshell.LeadResult
	getLeadResult *nutshell.LeadResult
	editResult    *nutshell.EditResult
	err           error
}

func (s *stubCRM) NewLead(ctx context.Context, ref string, lead *nutshell.Lead) (*nutshell.LeadResult, error) {
	s.newLeadCalls++
	s.lastLead = lead
	if s.err != nil {
		return nil, s.err
	}
	return s.newLeadResult, nil
}

func (s *stubCRM) GetLead(ctx context.Context, ref string, leadID int64) (*nutshell.LeadResult, error) {
	s.getLeadCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.getLeadResult, nil
}

func (s *stubCRM) EditLead(ctx context.Context, ref string, leadID int64, rev string, lead *nutshell.Lead) (*nutshell.EditResult, error) {
	s.editLeadCalls++
	s.lastLead = lead
	if s.err != nil {
		return nil, s.err
	}
	return s.editResult, nil
}

func newSyncService(t *testing.T, crm *stubCRM) *SyncService {
	t.Helper()
	registry, err := tenants.LoadRegistry("")
	require.NoError(t, err)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewSyncService(crm, registry, logg, nil)
}

func usd(amount string) nutshell.Price {
	return nutshell.Price{CurrencyShortname: "USD", Amount: decimal.RequireFromString(amount)}
}

func TestCreateUnsupportedRefFailsBeforeNetwork(t *testing.T) {
	crm := &stubCRM{}
	svc := newSyncService(t, crm)

	account := builderAccount()
	account.Ref = "unsupported"

	_, err := svc.Create(context.Background(), account, builderSnapshot())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCRM))
	assert.Zero(t, crm.newLeadCalls)
}

func TestCreateReturnsSubtotalMatch(t *testing.T) {
	crm := &stubCRM{newLeadResult: &nutshell.LeadResult{
		ID:          1003,
		Description: "ezCater 04/17/26 Athens",
		Products: []nutshell.LeadProductResult{
			{Product: nutshell.ProductRef{ID: "92"}, Quantity: 2, Price: usd("84.60")},
			{Product: nutshell.ProductRef{ID: "131"}, Quantity: 1, Price: usd("-39.98")},
		},
		Tags: []string{"ezcater"},
	}}
	svc := newSyncService(t, crm)

	result, err := svc.Create(context.Background(), builderAccount(), builderSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "1003", result.CRMID)
	assert.True(t, result.IsSubtotalMatch, "2 x 84.60 should match the 169.20 subtotal")
	assert.Equal(t, []string{"ezcater"}, result.Tags)
}

func TestCreateSubtotalMismatch(t *testing.T) {
	crm := &stubCRM{newLeadResult: &nutshell.LeadResult{
		ID: 1003,
		Products: []nutshell.LeadProductResult{
			{Product: nutshell.ProductRef{ID: "92"}, Quantity: 2, Price: usd("80.00")},
		},
	}}
	svc := newSyncService(t, crm)

	result, err := svc.Create(context.Background(), builderAccount(), builderSnapshot())
	require.NoError(t, err)
	assert.False(t, result.IsSubtotalMatch)
}

func TestSubtotalMatchSymmetric(t *testing.T) {
	products := []nutshell.LeadProductResult{
		{Product: nutshell.ProductRef{ID: "92"}, Quantity: 1, Price: usd("100.00")},
	}

	// The check must hold in both directions of the difference.
	assert.True(t, subtotalMatch(products, "131", 10000))
	assert.False(t, subtotalMatch(products, "131", 10002))
	assert.False(t, subtotalMatch(products, "131", 9998))
	assert.True(t, subtotalMatch(products, "131", 10000))
}

func TestUpdateMergesExistingTags(t *testing.T) {
	crm := &stubCRM{
		getLeadResult: &nutshell.LeadResult{
			ID:   1003,
			Rev:  "4",
			Tags: []string{"B"},
		},
		editResult: &nutshell.EditResult{Description: "ezCater 04/17/26 Athens", Rev: "5"},
	}
	svc := newSyncService(t, crm)

	account := builderAccount()
	account.LeadTags = []models.LeadTag{{Value: "A", IsRequired: true}}

	result, err := svc.Update(context.Background(), account, builderSnapshot(), "1003", []string{"C"})
	require.NoError(t, err)
	assert.Equal(t, "ezCater 04/17/26 Athens", result.Description)
	assert.Equal(t, 1, crm.getLeadCalls)
	assert.Equal(t, 1, crm.editLeadCalls)
	assert.Equal(t, []string{"A", "B", "C"}, crm.lastLead.Tags)
}

func TestUpdateUnsupportedRefFailsBeforeNetwork(t *testing.T) {
	crm := &stubCRM{}
	svc := newSyncService(t, crm)

	account := builderAccount()
	account.Ref = "unsupported"

	_, err := svc.Update(context.Background(), account, builderSnapshot(), "1003", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCRM))
	assert.Zero(t, crm.getLeadCalls)
	assert.Zero(t, crm.editLeadCalls)
}

func TestUpdateInvalidCRMID(t *testing.T) {
	svc := newSyncService(t, &stubCRM{})

	_, err := svc.Update(context.Background(), builderAccount(), builderSnapshot(), "lead-1003", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
