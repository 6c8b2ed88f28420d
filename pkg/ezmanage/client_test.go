package ezmanage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forkandfield/catersync/pkg/config"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

const fullOrderResponse = `{
  "data": {
    "order": {
      "orderNumber": "4RZ-NNP",
      "uuid": "0d654dd3-aa5c-4a4f-8120-3b17b8296d92",
      "event": {
        "timestamp": "2026-04-17T11:30:00-04:00",
        "address": {"street1": "101 Main St", "city": "Athens", "state": "GA", "zip": "30601"},
        "contact": {"name": "Dana Ortiz", "phone": "706-555-0147"}
      },
      "customer": {"firstName": "Dana", "lastName": "Ortiz"},
      "totals": {"subTotal": {"subunits": 16920}, "tip": {"subunits": 0}},
      "caterer": {"name": "Fork & Field Athens", "address": {"city": "Athens"}},
      "catererCart": {
        "feesAndDiscounts": [{"name": "Delivery Fee", "cost": {"subunits": 2500}}],
        "orderItems": [
          {
            "name": "Boxed Lunch Salad",
            "quantity": 12,
            "totalInSubunits": {"subunits": 16920},
            "customizations": [
              {"customizationTypeName": "Salad", "name": "Harvest Cobb", "quantity": 12}
            ]
          }
        ],
        "totals": {"catererTotalDue": 154.22}
      },
      "orderSourceType": "MARKETPLACE"
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.EzManageConfig{
		GraphQLURL: server.URL,
		APIKeys:    map[string]string{"forkandfield": "test-key"},
		Timeout:    5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestGetOrderSuccess(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fullOrderResponse))
	})

	snapshot, err := client.GetOrder(context.Background(), "0d654dd3", "forkandfield")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if gotAuth != "test-key" {
		t.Errorf("authorization header = %q, want %q", gotAuth, "test-key")
	}
	if snapshot.OrderNumber != "4RZ-NNP" {
		t.Errorf("order number = %q, want 4RZ-NNP", snapshot.OrderNumber)
	}
	if snapshot.Totals.SubTotalCents != 16920 {
		t.Errorf("subtotal = %d, want 16920", snapshot.Totals.SubTotalCents)
	}
	if snapshot.Totals.TipCents != 0 {
		t.Errorf("tip = %d, want 0", snapshot.Totals.TipCents)
	}
	if snapshot.Cart.TotalDueCents != 15422 {
		t.Errorf("total due = %d, want 15422", snapshot.Cart.TotalDueCents)
	}
	if snapshot.Caterer.City != "Athens" {
		t.Errorf("caterer city = %q, want Athens", snapshot.Caterer.City)
	}
	if len(snapshot.Cart.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(snapshot.Cart.LineItems))
	}
	item := snapshot.Cart.LineItems[0]
	if item.Quantity != 12 || item.Name != "Boxed Lunch Salad" {
		t.Errorf("unexpected line item %+v", item)
	}
	if len(item.Customizations) != 1 || item.Customizations[0].TypeName != "Salad" {
		t.Errorf("unexpected customizations %+v", item.Customizations)
	}
}

func TestGetOrderNullOrderIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"order": null}}`))
	})

	_, err := client.GetOrder(context.Background(), "missing", "forkandfield")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if !pkgerrors.Logged(err) {
		t.Error("not-found error should be marked logged")
	}
}

func TestGetOrderMissingFieldIsValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"order": {"orderNumber": "4RZ-NNP"}}}`))
	})

	_, err := client.GetOrder(context.Background(), "0d654dd3", "forkandfield")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestGetOrderZeroSubunitsPassValidation(t *testing.T) {
	// Present-but-zero money fields must not trip the required checks.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fullOrderResponse))
	})

	snapshot, err := client.GetOrder(context.Background(), "0d654dd3", "forkandfield")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if snapshot.Totals.TipCents != 0 {
		t.Errorf("tip = %d, want 0", snapshot.Totals.TipCents)
	}
}

func TestGetOrderGraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"order": null}, "errors": [{"message": "rate limited"}]}`))
	})

	_, err := client.GetOrder(context.Background(), "0d654dd3", "forkandfield")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("err = %v, want dependency", err)
	}
}

func TestGetOrderUpstreamStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetOrder(context.Background(), "0d654dd3", "forkandfield")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("err = %v, want dependency", err)
	}
}

func TestGetOrderUnknownRef(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach upstream")
	})

	_, err := client.GetOrder(context.Background(), "0d654dd3", "unknown")
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("err = %v, want configuration", err)
	}
}

func TestDollarsToCents(t *testing.T) {
	cases := []struct {
		dollars float64
		cents   int
	}{
		{154.22, 15422},
		{0, 0},
		{19.99, 1999},
		{0.1, 10},
	}
	for _, tc := range cases {
		if got := dollarsToCents(tc.dollars); got != tc.cents {
			t.Errorf("dollarsToCents(%v) = %d, want %d", tc.dollars, got, tc.cents)
		}
	}
}
