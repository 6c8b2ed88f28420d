package ezmanagewebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/forkandfield/catersync/internal/accounts"
	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

// SignatureHeader carries "<unixTimestamp>.<hexHmacSha256>" where the MAC is
// computed over "<timestamp>.<raw body bytes>".
const SignatureHeader = "X-EzManage-Signature"

const parentTypeCaterer = "Caterer"

// Authenticator verifies inbound webhook signatures against the per-tenant
// secret stored on the caterer's account.
type Authenticator struct {
	accounts accounts.Repository
}

func NewAuthenticator(repo accounts.Repository) *Authenticator {
	return &Authenticator{accounts: repo}
}

type signedBody struct {
	ParentType *string `json:"parent_type"`
	ParentID   *string `json:"parent_id"`
}

// Authenticate validates the signature header against the exact raw body and
// returns the matched account. The body bytes must be the unmodified request
// payload; the MAC is byte-sensitive.
func (a *Authenticator) Authenticate(ctx context.Context, header string, rawBody []byte) (*models.Account, error) {
	timestamp, signature, err := splitHeader(header)
	if err != nil {
		return nil, err
	}

	var body signedBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook body")
	}
	if body.ParentType == nil || body.ParentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook body missing parent_type or parent_id")
	}
	if *body.ParentType != parentTypeCaterer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook parent_type is not a caterer")
	}

	account, err := a.accounts.FindByCatererID(ctx, *body.ParentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(account.WebhookSecret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
			"account has no webhook secret configured")
	}

	mac := hmac.New(sha256.New, []byte(account.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}
	return account, nil
}

func splitHeader(header string) (timestamp, signature string, err error) {
	if header == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing signature header")
	}
	parts := strings.Split(header, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed signature header")
	}
	return parts[0], parts[1], nil
}
