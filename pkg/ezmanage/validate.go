package ezmanage

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Scalars are pointers so a present-but-zero value (tip of 0 cents) still
// satisfies the required check while an absent field fails it.
type orderPayload struct {
	OrderNumber     *string          `json:"orderNumber" validate:"required"`
	UUID            *string          `json:"uuid" validate:"required"`
	Event           *eventPayload    `json:"event" validate:"required"`
	Customer        *customerPayload `json:"customer" validate:"required"`
	Totals          *totalsPayload   `json:"totals" validate:"required"`
	Caterer         *catererPayload  `json:"caterer" validate:"required"`
	CatererCart     *cartPayload     `json:"catererCart" validate:"required"`
	OrderSourceType *string          `json:"orderSourceType" validate:"required"`
}

type eventPayload struct {
	Timestamp *string         `json:"timestamp" validate:"required"`
	Address   *addressPayload `json:"address" validate:"required"`
	Contact   *contactPayload `json:"contact" validate:"required"`
}

type addressPayload struct {
	Street1 *string `json:"street1"`
	City    *string `json:"city" validate:"required"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
}

type contactPayload struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type customerPayload struct {
	FirstName *string `json:"firstName" validate:"required"`
	LastName  *string `json:"lastName" validate:"required"`
}

type totalsPayload struct {
	SubTotal *moneyPayload `json:"subTotal" validate:"required"`
	Tip      *moneyPayload `json:"tip" validate:"required"`
}

type moneyPayload struct {
	Subunits *int `json:"subunits" validate:"required"`
}

type catererPayload struct {
	Name    *string         `json:"name"`
	Address *addressPayload `json:"address" validate:"required"`
}

type cartPayload struct {
	FeesAndDiscounts []feePayload       `json:"feesAndDiscounts" validate:"dive"`
	OrderItems       []orderItemPayload `json:"orderItems" validate:"required,dive"`
	Totals           *cartTotalsPayload `json:"totals" validate:"required"`
}

type feePayload struct {
	Name *string       `json:"name" validate:"required"`
	Cost *moneyPayload `json:"cost" validate:"required"`
}

type orderItemPayload struct {
	Name            *string                `json:"name" validate:"required"`
	Quantity        *int                   `json:"quantity" validate:"required"`
	TotalInSubunits *moneyPayload          `json:"totalInSubunits" validate:"required"`
	Customizations  []customizationPayload `json:"customizations" validate:"dive"`
}

type customizationPayload struct {
	CustomizationTypeName *string `json:"customizationTypeName" validate:"required"`
	Name                  *string `json:"name" validate:"required"`
	Quantity              *int    `json:"quantity" validate:"required"`
}

type cartTotalsPayload struct {
	CatererTotalDue *float64 `json:"catererTotalDue" validate:"required"`
}

// toSnapshot validates the payload field-by-field and converts it into the
// plain Snapshot consumed by the rest of the pipeline.
func (p *orderPayload) toSnapshot() (*Snapshot, *pkgerrors.Error) {
	if err := validate.Struct(p); err != nil {
		return nil, shapeError(err)
	}

	snapshot := &Snapshot{
		OrderNumber: *p.OrderNumber,
		UUID:        *p.UUID,
		Event: Event{
			Timestamp: *p.Event.Timestamp,
			Address: Address{
				Street: stringValue(p.Event.Address.Street1),
				City:   *p.Event.Address.City,
				State:  stringValue(p.Event.Address.State),
				Zip:    stringValue(p.Event.Address.Zip),
			},
			Contact: Contact{
				Name:  stringValue(p.Event.Contact.Name),
				Phone: stringValue(p.Event.Contact.Phone),
			},
		},
		Customer: Customer{
			FirstName: *p.Customer.FirstName,
			LastName:  *p.Customer.LastName,
		},
		Totals: Totals{
			SubTotalCents: *p.Totals.SubTotal.Subunits,
			TipCents:      *p.Totals.Tip.Subunits,
		},
		Caterer: Caterer{
			Name: stringValue(p.Caterer.Name),
			City: *p.Caterer.Address.City,
		},
		SourceType: *p.OrderSourceType,
	}

	cart := Cart{
		TotalDueCents: dollarsToCents(*p.CatererCart.Totals.CatererTotalDue),
	}
	for _, fee := range p.CatererCart.FeesAndDiscounts {
		cart.FeesAndDiscounts = append(cart.FeesAndDiscounts, FeeAndDiscount{
			Name:      *fee.Name,
			CostCents: *fee.Cost.Subunits,
		})
	}
	for _, item := range p.CatererCart.OrderItems {
		lineItem := LineItem{
			Name:       *item.Name,
			Quantity:   *item.Quantity,
			TotalCents: *item.TotalInSubunits.Subunits,
		}
		for _, custo := range item.Customizations {
			lineItem.Customizations = append(lineItem.Customizations, Customization{
				TypeName: *custo.CustomizationTypeName,
				Name:     *custo.Name,
				Quantity: *custo.Quantity,
			})
		}
		cart.LineItems = append(cart.LineItems, lineItem)
	}
	snapshot.Cart = cart

	return snapshot, nil
}

func shapeError(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var combined error
		details := map[string]string{}
		for _, fieldErr := range errs {
			combined = multierr.Append(combined, fmt.Errorf("%s: %s", fieldErr.Namespace(), fieldErr.Tag()))
			details[fieldErr.Namespace()] = fieldErr.Tag()
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "malformed ezmanage order response").
			WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed ezmanage order response")
}

func dollarsToCents(amount float64) int {
	return int(decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
