package ezmanage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/forkandfield/catersync/pkg/config"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/logger"
)

const orderQuery = `query Order($id: ID!) {
  order(id: $id) {
    orderNumber
    uuid
    event {
      timestamp
      address { street1 city state zip }
      contact { name phone }
    }
    customer { firstName lastName }
    totals {
      subTotal { subunits }
      tip { subunits }
    }
    caterer {
      name
      address { city }
    }
    catererCart {
      feesAndDiscounts { name cost { subunits } }
      orderItems {
        name
        quantity
        totalInSubunits { subunits }
        customizations { customizationTypeName name quantity }
      }
      totals { catererTotalDue }
    }
    orderSourceType
  }
}`

// Client fetches and validates orders from the EzManage GraphQL API. Each
// tenant ref resolves to its own API credential.
type Client struct {
	httpClient *http.Client
	graphqlURL string
	apiKeys    map[string]string
	logg       *logger.Logger
}

// NewClient builds the EzManage client from configuration.
func NewClient(cfg config.EzManageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.GraphQLURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "ezmanage graphql url is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		graphqlURL: cfg.GraphQLURL,
		apiKeys:    cfg.APIKeys,
		logg:       logg,
	}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data struct {
		Order *orderPayload `json:"order"`
	} `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

// GetOrder retrieves the order and strictly validates the response shape.
// A null order in the response data is translated to a not-found error; any
// shape mismatch fails with a validation error rather than passing
// partially-typed data downstream.
func (c *Client) GetOrder(ctx context.Context, orderID, ref string) (*Snapshot, error) {
	key, ok := c.apiKeys[ref]
	if !ok || strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
			fmt.Sprintf("no ezmanage api key configured for ref %q", ref))
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     orderQuery,
		Variables: map[string]any{"id": orderID},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ezmanage order")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read ezmanage response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("ezmanage returned status %d", resp.StatusCode))
	}

	var payload graphqlResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, c.logOnce(ctx, orderID,
			pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode ezmanage order response"))
	}
	if len(payload.Errors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("ezmanage query failed: %s", payload.Errors[0].Message))
	}
	if payload.Data.Order == nil {
		return nil, c.logOnce(ctx, orderID,
			pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found upstream", orderID)))
	}

	snapshot, verr := payload.Data.Order.toSnapshot()
	if verr != nil {
		return nil, c.logOnce(ctx, orderID, verr)
	}
	return snapshot, nil
}

func (c *Client) logOnce(ctx context.Context, orderID string, err *pkgerrors.Error) *pkgerrors.Error {
	if c.logg != nil {
		ctx = c.logg.WithOrderID(ctx, orderID)
		c.logg.Error(ctx, "ezmanage order fetch failed", err)
	}
	return err.MarkLogged()
}
