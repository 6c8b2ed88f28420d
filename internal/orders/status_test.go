package orders

import (
	"testing"
	"time"

	"github.com/forkandfield/catersync/pkg/enums"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

var statusTestNow = time.Date(2026, 4, 17, 12, 0, 0, 0, time.UTC)

func newFixedConverter() *StatusConverter {
	return NewStatusConverter(func() time.Time { return statusTestNow })
}

func TestToPresentationAcceptedFutureDue(t *testing.T) {
	converter := newFixedConverter()
	due := statusTestNow.Add(time.Hour).Format(time.RFC3339)

	status, err := converter.ToPresentation("accepted", due)
	if err != nil {
		t.Fatalf("ToPresentation: %v", err)
	}
	if status != enums.PresentationStatusAccepted {
		t.Errorf("status = %q, want accepted", status)
	}
}

func TestToPresentationAcceptedPastDueIsPending(t *testing.T) {
	converter := newFixedConverter()
	due := statusTestNow.Add(-time.Hour).Format(time.RFC3339)

	status, err := converter.ToPresentation("accepted", due)
	if err != nil {
		t.Fatalf("ToPresentation: %v", err)
	}
	if status != enums.PresentationStatusPending {
		t.Errorf("status = %q, want pending", status)
	}
}

func TestToPresentationCancelledIgnoresDueTime(t *testing.T) {
	converter := newFixedConverter()

	status, err := converter.ToPresentation("Cancelled", "not-a-time")
	if err != nil {
		t.Fatalf("ToPresentation: %v", err)
	}
	if status != enums.PresentationStatusCancelled {
		t.Errorf("status = %q, want cancelled", status)
	}
}

func TestToPresentationUnparseableDueTime(t *testing.T) {
	converter := newFixedConverter()

	_, err := converter.ToPresentation("accepted", "april seventeenth")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestToPresentationUnknownStored(t *testing.T) {
	converter := newFixedConverter()

	_, err := converter.ToPresentation("refunded", "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestToStorageCollapsesPending(t *testing.T) {
	converter := newFixedConverter()

	for _, presentation := range []enums.PresentationStatus{
		enums.PresentationStatusPending,
		enums.PresentationStatusAccepted,
	} {
		stored, err := converter.ToStorage(presentation)
		if err != nil {
			t.Fatalf("ToStorage(%s): %v", presentation, err)
		}
		if stored != enums.OrderStatusAccepted {
			t.Errorf("ToStorage(%s) = %q, want accepted", presentation, stored)
		}
	}

	if _, err := converter.ToStorage("unknown"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Errorf("unknown presentation should be a validation error, got %v", err)
	}
}
