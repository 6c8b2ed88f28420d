package ezmanage

// Snapshot is the validated, per-fetch representation of an upstream order.
// It is never persisted; every sync fetches a fresh copy.
type Snapshot struct {
	OrderNumber string
	UUID        string
	Event       Event
	Customer    Customer
	Totals      Totals
	Caterer     Caterer
	Cart        Cart
	SourceType  string
}

// Event describes the catering event the order fulfills.
type Event struct {
	Timestamp string
	Address   Address
	Contact   Contact
}

type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

type Contact struct {
	Name  string
	Phone string
}

type Customer struct {
	FirstName string
	LastName  string
}

// Totals carries the order monetary totals in cents.
type Totals struct {
	SubTotalCents int
	TipCents      int
}

type Caterer struct {
	Name string
	City string
}

// Cart is the caterer-side view of the order contents.
type Cart struct {
	FeesAndDiscounts []FeeAndDiscount
	LineItems        []LineItem
	TotalDueCents    int
}

type FeeAndDiscount struct {
	Name      string
	CostCents int
}

// LineItem is one ordered menu item with its customizations.
type LineItem struct {
	Name           string
	Quantity       int
	TotalCents     int
	Customizations []Customization
}

// Customization is a single option applied to a line item. TypeName is the
// customization category ("Salad", "Add Drinks", ...), Name the chosen value.
type Customization struct {
	TypeName string
	Name     string
	Quantity int
}
