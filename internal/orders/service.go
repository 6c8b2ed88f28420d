package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/forkandfield/catersync/pkg/db/models"
	"github.com/forkandfield/catersync/pkg/logger"
)

type service struct {
	repo      Repository
	converter *StatusConverter
	logg      *logger.Logger
}

// NewService builds the order read service.
func NewService(repo Repository, converter *StatusConverter, logg *logger.Logger) Service {
	return &service{repo: repo, converter: converter, logg: logg}
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.toView(order)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) ListOrders(ctx context.Context, accountID uuid.UUID) ([]OrderView, error) {
	orders, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		view, err := s.toView(&orders[i])
		if err != nil {
			// One bad row should not hide the rest of the list.
			s.logg.Error(s.logg.WithOrderID(ctx, orders[i].ID.String()),
				"skipping order with unconvertible status", err)
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *service) toView(order *models.CatererOrder) (*OrderView, error) {
	status, err := s.converter.ToPresentation(order.Status.String(), order.EventAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &OrderView{
		ID:             order.ID,
		AccountID:      order.AccountID,
		CatererID:      order.CatererID,
		CatererName:    order.CatererName,
		OrderNumber:    order.OrderNumber,
		Status:         status,
		CRMID:          order.CRMID,
		CRMDescription: order.CRMDescription,
		Warnings:       order.Warnings,
		EventAt:        order.EventAt,
		AcceptedAt:     order.AcceptedAt,
		LastUpdatedAt:  order.LastUpdatedAt,
	}, nil
}
