package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/forkandfield/catersync/api/responses"
	"github.com/forkandfield/catersync/api/validators"
	ezmanagewebhook "github.com/forkandfield/catersync/internal/webhooks/ezmanage"
	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/logger"
)

const orderEntityType = "Order"

type EzManageWebhookService interface {
	HandleEvent(ctx context.Context, account *models.Account, event *ezmanagewebhook.Event) error
}

type ezManageAuthenticator interface {
	Authenticate(ctx context.Context, header string, rawBody []byte) (*models.Account, error)
}

type ezManageWebhookGuard interface {
	CheckAndMark(ctx context.Context, fingerprint string) (bool, error)
	Release(ctx context.Context, fingerprint string) error
}

// EzManageWebhook handles EzManage order lifecycle events.
func EzManageWebhook(svc EzManageWebhookService, auth ezManageAuthenticator, guard ezManageWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if auth == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook authenticator unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		account, err := auth.Authenticate(ctx, r.Header.Get(ezmanagewebhook.SignatureHeader), payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var event ezmanagewebhook.Event
		if err := validators.DecodeJSONBytes(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if event.EntityType != orderEntityType {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnprocessable, "unsupported entity type").
				WithDetails(map[string]any{"entity_type": event.EntityType}))
			return
		}

		fingerprint := ezmanagewebhook.Fingerprint(event.EntityID, event.OccurredAt)

		alreadyProcessed, err := guard.CheckAndMark(ctx, fingerprint)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.HandleEvent(ctx, account, &event); err != nil {
			_ = guard.Release(ctx, fingerprint)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("ezmanage event %s %s processed", event.Key, event.EntityID))
		}
		responses.WriteSuccess(w, nil)
	}
}
