package nutshell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/forkandfield/catersync/pkg/config"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/logger"
)

// Client speaks the Nutshell JSON-RPC API. Credentials are resolved per
// tenant ref and sent as HTTP basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	usernames  map[string]string
	apiKeys    map[string]string
	logg       *logger.Logger
}

func NewClient(cfg config.NutshellConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "nutshell base url is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		usernames:  cfg.Usernames,
		apiKeys:    cfg.APIKeys,
		logg:       logg,
	}, nil
}

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// NewLead creates a lead and returns the CRM's stored representation.
func (c *Client) NewLead(ctx context.Context, ref string, lead *Lead) (*LeadResult, error) {
	var result LeadResult
	params := map[string]any{"lead": lead}
	if err := c.call(ctx, ref, "newLead", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLead fetches a lead by id, mainly for its current rev and tags ahead of
// an edit.
func (c *Client) GetLead(ctx context.Context, ref string, leadID int64) (*LeadResult, error) {
	var result LeadResult
	params := map[string]any{"leadId": leadID}
	if err := c.call(ctx, ref, "getLead", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditLead rewrites a lead at the given rev.
func (c *Client) EditLead(ctx context.Context, ref string, leadID int64, rev string, lead *Lead) (*EditResult, error) {
	var result EditResult
	params := map[string]any{"leadId": leadID, "rev": rev, "lead": lead}
	if err := c.call(ctx, ref, "editLead", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) call(ctx context.Context, ref, method string, params, result any) error {
	username, okUser := c.usernames[ref]
	apiKey, okKey := c.apiKeys[ref]
	if !okUser || !okKey || strings.TrimSpace(apiKey) == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration,
			fmt.Sprintf("no nutshell credentials configured for ref %q", ref))
	}

	body, err := json.Marshal(rpcRequest{
		ID:     uuid.NewString(),
		Method: method,
		Params: params,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s request", method))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", method))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(username, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCRM, err, fmt.Sprintf("call nutshell %s", method))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCRM, err, fmt.Sprintf("read nutshell %s response", method))
	}
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeCRM,
			fmt.Sprintf("nutshell %s returned status %d", method, resp.StatusCode))
	}

	var payload rpcResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCRM, err, fmt.Sprintf("decode nutshell %s response", method))
	}
	if payload.Error != nil {
		if payload.Error.Code == http.StatusNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("nutshell %s: %s", method, payload.Error.Message))
		}
		return pkgerrors.New(pkgerrors.CodeCRM,
			fmt.Sprintf("nutshell %s failed: %s", method, payload.Error.Message))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Result, result); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCRM, err, fmt.Sprintf("decode nutshell %s result", method))
	}
	return nil
}
