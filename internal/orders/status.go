package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/forkandfield/catersync/pkg/enums"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

// StatusConverter maps between the persisted order status and the
// presentation status. The presentation side is time-aware: an accepted order
// whose event time has passed reads as pending follow-up.
type StatusConverter struct {
	now func() time.Time
}

// NewStatusConverter builds a converter; a nil clock uses the wall clock.
func NewStatusConverter(now func() time.Time) *StatusConverter {
	if now == nil {
		now = time.Now
	}
	return &StatusConverter{now: now}
}

// ToPresentation renders a stored status for consumers. Stored values are
// matched case-insensitively. Accepted orders require a parseable due time;
// an unparseable one is a validation failure, not a silent default.
func (c *StatusConverter) ToPresentation(stored string, dueTimeISO string) (enums.PresentationStatus, error) {
	switch strings.ToLower(stored) {
	case string(enums.OrderStatusCancelled):
		return enums.PresentationStatusCancelled, nil
	case string(enums.OrderStatusArchived):
		return enums.PresentationStatusArchived, nil
	case string(enums.OrderStatusAccepted):
		due, err := time.Parse(time.RFC3339, dueTimeISO)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("unparseable order due time %q", dueTimeISO))
		}
		if due.Before(c.now()) {
			return enums.PresentationStatusPending, nil
		}
		return enums.PresentationStatusAccepted, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown stored order status %q", stored))
	}
}

// ToStorage collapses a presentation status back to its stored form. Pending
// and accepted both store as accepted; the distinction is recomputed from the
// event time on the way out.
func (c *StatusConverter) ToStorage(presentation enums.PresentationStatus) (enums.OrderStatus, error) {
	switch presentation {
	case enums.PresentationStatusPending, enums.PresentationStatusAccepted:
		return enums.OrderStatusAccepted, nil
	case enums.PresentationStatusCancelled:
		return enums.OrderStatusCancelled, nil
	case enums.PresentationStatusArchived:
		return enums.OrderStatusArchived, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown presentation status %q", presentation))
	}
}
