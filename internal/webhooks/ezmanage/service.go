package ezmanagewebhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkandfield/catersync/internal/leads"
	"github.com/forkandfield/catersync/internal/orders"
	"github.com/forkandfield/catersync/pkg/db/models"
	"github.com/forkandfield/catersync/pkg/enums"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/ezmanage"
	"github.com/forkandfield/catersync/pkg/logger"
	"github.com/forkandfield/catersync/pkg/metrics"
	"github.com/forkandfield/catersync/pkg/outbox"
	"github.com/forkandfield/catersync/pkg/outbox/payloads"
)

const subtotalMismatchWarning = "subtotal mismatch between upstream order and CRM products"

// Event is the decoded webhook body.
type Event struct {
	ParentType string                `json:"parent_type" validate:"required"`
	ParentID   string                `json:"parent_id" validate:"required"`
	EntityType string                `json:"entity_type" validate:"required"`
	EntityID   string                `json:"entity_id" validate:"required"`
	Key        enums.WebhookEventKey `json:"key" validate:"required"`
	OccurredAt string                `json:"occurred_at" validate:"required"`
}

type orderFetcher interface {
	GetOrder(ctx context.Context, orderID, ref string) (*ezmanage.Snapshot, error)
}

type crmSync interface {
	Create(ctx context.Context, account *models.Account, snapshot *ezmanage.Snapshot) (*leads.SyncResult, error)
	Update(ctx context.Context, account *models.Account, snapshot *ezmanage.Snapshot, crmID string, additionalTags []string) (*leads.UpdateResult, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CancellationNotifier is the CRM-side hook invoked after an order is marked
// cancelled. The default does nothing; tenants that file cancellations in the
// CRM plug in their own.
type CancellationNotifier interface {
	OrderCancelled(ctx context.Context, account *models.Account, order *models.CatererOrder) error
}

// NoopCancellationNotifier ignores cancellations.
type NoopCancellationNotifier struct{}

func (NoopCancellationNotifier) OrderCancelled(context.Context, *models.Account, *models.CatererOrder) error {
	return nil
}

type ServiceParams struct {
	OrderRepo            orders.Repository
	Fetcher              orderFetcher
	Sync                 crmSync
	Outbox               outboxPublisher
	TransactionRunner    txRunner
	CancellationNotifier CancellationNotifier
	Logger               *logger.Logger
	Metrics              *metrics.WebhookMetrics
	Now                  func() time.Time
}

// Service coordinates one webhook event end to end: classify, re-read the
// stored order, fetch the upstream snapshot, sync the CRM lead, persist.
type Service struct {
	orderRepo orders.Repository
	fetcher   orderFetcher
	sync      crmSync
	outbox    outboxPublisher
	txRunner  txRunner
	notifier  CancellationNotifier
	logg      *logger.Logger
	metrics   *metrics.WebhookMetrics
	now       func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo required")
	}
	if params.Fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order fetcher required")
	}
	if params.Sync == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "crm sync required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox publisher required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.CancellationNotifier == nil {
		params.CancellationNotifier = NoopCancellationNotifier{}
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		orderRepo: params.OrderRepo,
		fetcher:   params.Fetcher,
		sync:      params.Sync,
		outbox:    params.Outbox,
		txRunner:  params.TransactionRunner,
		notifier:  params.CancellationNotifier,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       params.Now,
	}, nil
}

// HandleEvent runs the lifecycle transition for one authenticated event.
func (s *Service) HandleEvent(ctx context.Context, account *models.Account, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}
	started := s.now()
	s.metrics.IncReceived(string(event.Key))
	defer func() {
		s.metrics.ObserveDuration(string(event.Key), s.now().Sub(started))
	}()

	orderID, err := uuid.Parse(event.EntityID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err,
			fmt.Sprintf("entity id %q is not an order uuid", event.EntityID))
	}

	ctx = s.withEventFields(ctx, account, event)

	switch event.Key {
	case enums.WebhookEventAccepted:
		err = s.handleAccepted(ctx, account, orderID)
	case enums.WebhookEventCancelled:
		err = s.handleCancelled(ctx, account, orderID)
	default:
		return pkgerrors.New(pkgerrors.CodeUnprocessable,
			fmt.Sprintf("unsupported event key %q", event.Key))
	}
	if err != nil {
		s.metrics.IncFailed(string(event.Key))
	}
	return err
}

// handleAccepted decides create vs. update by re-reading the stored order
// immediately before acting; a present crm_id is the single source of truth
// for "lead already created".
func (s *Service) handleAccepted(ctx context.Context, account *models.Account, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return err
		}
		order = nil
	}

	snapshot, err := s.fetcher.GetOrder(ctx, orderID.String(), account.Ref)
	if err != nil {
		return err
	}
	eventAt, err := time.Parse(time.RFC3339, snapshot.Event.Timestamp)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err,
			fmt.Sprintf("unparseable event timestamp %q", snapshot.Event.Timestamp))
	}

	if order == nil {
		return s.createOrder(ctx, account, orderID, snapshot, eventAt)
	}
	if order.CRMID == nil {
		return s.recoverCRMLink(ctx, account, order, snapshot)
	}
	return s.updateOrder(ctx, account, order, snapshot)
}

func (s *Service) createOrder(ctx context.Context, account *models.Account, orderID uuid.UUID, snapshot *ezmanage.Snapshot, eventAt time.Time) error {
	crmID, crmDescription, warnings := s.attemptCreateSync(ctx, account, snapshot)

	now := s.now()
	order := &models.CatererOrder{
		ID:             orderID,
		AccountID:      account.ID,
		CatererID:      account.CatererID,
		CatererName:    snapshot.Caterer.Name,
		OrderNumber:    snapshot.OrderNumber,
		Status:         enums.OrderStatusAccepted,
		CRMID:          crmID,
		CRMDescription: crmDescription,
		Warnings:       warnings,
		EventAt:        eventAt,
		AcceptedAt:     now,
		LastUpdatedAt:  now,
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCaptured,
			AggregateType: enums.AggregateCatererOrder,
			AggregateID:   order.ID,
			Source:        &outbox.SourceRef{AccountRef: account.Ref, CatererID: account.CatererID},
			Version:       1,
			Data: payloads.OrderCaptured{
				OrderID:     order.ID.String(),
				AccountRef:  account.Ref,
				OrderNumber: order.OrderNumber,
				CRMID:       order.CRMID,
				EventAt:     order.EventAt,
			},
		})
	})
}

// recoverCRMLink retries lead creation for an order persisted without one. A
// second failure leaves the row untouched; nothing changed.
func (s *Service) recoverCRMLink(ctx context.Context, account *models.Account, order *models.CatererOrder, snapshot *ezmanage.Snapshot) error {
	crmID, crmDescription, warnings := s.attemptCreateSync(ctx, account, snapshot)
	if crmID == nil {
		return nil
	}

	updates := map[string]any{
		"crm_id":          *crmID,
		"last_updated_at": s.now(),
	}
	if crmDescription != nil {
		updates["crm_description"] = *crmDescription
	}
	if len(warnings) > 0 {
		updates["warnings"] = leads.MergeTags(order.Warnings, warnings)
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Update(ctx, order.ID, updates); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderResynced,
			AggregateType: enums.AggregateCatererOrder,
			AggregateID:   order.ID,
			Source:        &outbox.SourceRef{AccountRef: account.Ref, CatererID: account.CatererID},
			Version:       1,
			Data: payloads.OrderResynced{
				OrderID:    order.ID.String(),
				AccountRef: account.Ref,
				CRMID:      crmID,
			},
		})
	})
}

// updateOrder re-syncs an order that already has a lead. Redelivery of an
// identical event ends here with no CRM create and, when the description is
// unchanged, no database write.
func (s *Service) updateOrder(ctx context.Context, account *models.Account, order *models.CatererOrder, snapshot *ezmanage.Snapshot) error {
	result, err := s.sync.Update(ctx, account, snapshot, *order.CRMID, nil)
	if err != nil {
		// An update failure aborts the sync, not the webhook acknowledgment.
		s.logError(ctx, "crm lead update failed", err)
		return nil
	}

	if order.CRMDescription != nil && *order.CRMDescription == result.Description {
		return nil
	}

	updates := map[string]any{
		"crm_description": result.Description,
		"last_updated_at": s.now(),
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Update(ctx, order.ID, updates); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderResynced,
			AggregateType: enums.AggregateCatererOrder,
			AggregateID:   order.ID,
			Source:        &outbox.SourceRef{AccountRef: account.Ref, CatererID: account.CatererID},
			Version:       1,
			Data: payloads.OrderResynced{
				OrderID:    order.ID.String(),
				AccountRef: account.Ref,
				CRMID:      order.CRMID,
			},
		})
	})
}

func (s *Service) handleCancelled(ctx context.Context, account *models.Account, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":          enums.OrderStatusCancelled,
			"last_updated_at": s.now(),
		}
		if err := s.orderRepo.WithTx(tx).Update(ctx, order.ID, updates); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateCatererOrder,
			AggregateID:   order.ID,
			Source:        &outbox.SourceRef{AccountRef: account.Ref, CatererID: account.CatererID},
			Version:       1,
			Data: payloads.OrderCancelled{
				OrderID:    order.ID.String(),
				AccountRef: account.Ref,
			},
		})
	})
	if err != nil {
		return err
	}

	order.Status = enums.OrderStatusCancelled
	if err := s.notifier.OrderCancelled(ctx, account, order); err != nil {
		s.logError(ctx, "cancellation notifier failed", err)
	}
	return nil
}

// attemptCreateSync runs lead creation and degrades failures to a warning:
// losing the CRM link must not block order capture.
func (s *Service) attemptCreateSync(ctx context.Context, account *models.Account, snapshot *ezmanage.Snapshot) (*string, *string, []string) {
	result, err := s.sync.Create(ctx, account, snapshot)
	if err != nil {
		s.logError(ctx, "crm lead creation failed, capturing order without link", err)
		return nil, nil, []string{fmt.Sprintf("crm sync failed: %s", err.Error())}
	}

	warnings := append([]string{}, result.Warnings...)
	if !result.IsSubtotalMatch {
		warnings = append(warnings, subtotalMismatchWarning)
	}
	return &result.CRMID, &result.Description, warnings
}

func (s *Service) withEventFields(ctx context.Context, account *models.Account, event *Event) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithAccountRef(ctx, account.Ref)
	ctx = s.logg.WithCatererID(ctx, account.CatererID)
	return s.logg.WithOrderID(ctx, event.EntityID)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	if pkgerrors.Logged(err) {
		s.logg.Warn(ctx, msg)
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		typed.MarkLogged()
	}
	s.logg.Error(ctx, msg, err)
}
