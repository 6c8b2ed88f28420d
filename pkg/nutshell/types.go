package nutshell

import "github.com/shopspring/decimal"

// Lead is the JSON-RPC payload for newLead/editLead. Optional sections are
// omitted from the wire when empty so the CRM keeps its stored values.
type Lead struct {
	Products     []LeadProduct     `json:"products,omitempty"`
	Description  string            `json:"description"`
	Note         string            `json:"note,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	StagesetID   string            `json:"stagesetId,omitempty"`
	Assignee     *EntityRef        `json:"assignee,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
}

// LeadProduct links a catalog product to a lead. Price is only set for
// synthetic lines that override the catalog price.
type LeadProduct struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Price    *Price     `json:"price,omitempty"`
}

type ProductRef struct {
	ID string `json:"id"`
}

type Price struct {
	CurrencyShortname string          `json:"currency_shortname"`
	Amount            decimal.Decimal `json:"amount"`
}

// EntityRef addresses another CRM entity, e.g. {"entityType": "Users", "id": 7}.
type EntityRef struct {
	EntityType string `json:"entityType"`
	ID         int64  `json:"id"`
}

// LeadResult is the lead representation the CRM returns from newLead and
// getLead. Product prices here are the CRM's own catalog prices, which is what
// the subtotal reconciliation compares against.
type LeadResult struct {
	ID          int64               `json:"id"`
	Rev         string              `json:"rev"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Products    []LeadProductResult `json:"products"`
	Tags        []string            `json:"tags"`
}

type LeadProductResult struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Price    Price      `json:"price"`
}

// EditResult is the trimmed editLead response.
type EditResult struct {
	Description string `json:"description"`
	Rev         string `json:"rev"`
}
