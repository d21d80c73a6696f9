// Package invoice holds the invoice aggregate exchanged with the remote
// Aquakart API and the derived values the console computes from it.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote store expects prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the day/month/year display format the remote store uses.
const DateLayout = "02/01/2006"

type PaidStatus string

const (
	PaidStatusUnset   PaidStatus = ""
	PaidStatusPaid    PaidStatus = "paid"
	PaidStatusPending PaidStatus = "pending"
	PaidStatusPartial PaidStatus = "partial"
)

// PaidStatuses lists the accepted values in display order.
var PaidStatuses = []PaidStatus{PaidStatusUnset, PaidStatusPaid, PaidStatusPending, PaidStatusPartial}

func (s PaidStatus) Valid() bool {
	switch s {
	case PaidStatusUnset, PaidStatusPaid, PaidStatusPending, PaidStatusPartial:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeUnset PaymentType = ""
	PaymentTypeCash  PaymentType = "cash"
	PaymentTypeCard  PaymentType = "card"
	PaymentTypeUPI   PaymentType = "upi"
	PaymentTypeBank  PaymentType = "bank"
)

// PaymentTypes lists the accepted values in display order.
var PaymentTypes = []PaymentType{PaymentTypeUnset, PaymentTypeCash, PaymentTypeCard, PaymentTypeUPI, PaymentTypeBank}

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentTypeUnset, PaymentTypeCash, PaymentTypeCard, PaymentTypeUPI, PaymentTypeBank:
		return true
	}
	return false
}

type CustomerDetails struct {
	Name    string `json:"name" validate:"notblank"`
	Phone   int64  `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type GstDetails struct {
	GstName    string `json:"gstName"`
	GstNo      string `json:"gstNo"`
	GstPhone   *int64 `json:"gstPhone"`
	GstEmail   string `json:"gstEmail"`
	GstAddress string `json:"gstAddress"`
}

// LineItem is one product row. It has no identity beyond its position.
type LineItem struct {
	ProductName     string          `json:"productName" validate:"notblank"`
	ProductQuantity int             `json:"productQuantity" validate:"min=1"`
	ProductPrice    decimal.Decimal `json:"productPrice"`
	ProductSerialNo string          `json:"productSerialNo,omitempty"`
}

// Amount is quantity × price for the row.
func (li LineItem) Amount() decimal.Decimal {
	return li.ProductPrice.Mul(decimal.NewFromInt(int64(li.ProductQuantity)))
}

type Transport struct {
	DeliveredBy  string `json:"deliveredBy"`
	DeliveryDate string `json:"deliveryDate"`
}

type Invoice struct {
	ID                 string          `json:"id,omitempty"`
	InvoiceNo          string          `json:"invoiceNo" validate:"notblank"`
	Date               string          `json:"date" validate:"notblank,invoicedate"`
	CustomerDetails    CustomerDetails `json:"customerDetails"`
	Gst                bool            `json:"gst"`
	Po                 bool            `json:"po"`
	Quotation          bool            `json:"quotation"`
	GstDetails         GstDetails      `json:"gstDetails"`
	Products           []LineItem      `json:"products" validate:"dive"`
	Transport          Transport       `json:"transport"`
	PaidStatus         PaidStatus      `json:"paidStatus" validate:"omitempty,oneof=paid pending partial"`
	PaymentType        PaymentType     `json:"paymentType" validate:"omitempty,oneof=cash card upi bank"`
	AquakartOnlineUser bool            `json:"aquakartOnlineUser"`
	AquakartInvoice    bool            `json:"aquakartInvoice"`
}

// IsDraft reports whether the invoice has not been persisted yet.
func (inv *Invoice) IsDraft() bool {
	return inv.ID == ""
}

// IsRegular reports whether none of the classification flags is set.
func (inv *Invoice) IsRegular() bool {
	return !inv.Gst && !inv.Po && !inv.Quotation
}

// Total is the sum of quantity × price over all line items.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Products {
		total = total.Add(p.Amount())
	}
	return total
}

// Clone returns a deep copy; the copy shares no slices or pointers with inv.
func (inv *Invoice) Clone() Invoice {
	out := *inv
	if inv.Products != nil {
		out.Products = make([]LineItem, len(inv.Products))
		copy(out.Products, inv.Products)
	}
	if inv.GstDetails.GstPhone != nil {
		phone := *inv.GstDetails.GstPhone
		out.GstDetails.GstPhone = &phone
	}
	return out
}

// Empty returns the blank template a new invoice starts from.
func Empty(now time.Time) Invoice {
	return Invoice{
		Date:     now.Format(DateLayout),
		Products: []LineItem{},
	}
}

// NewLineItemDraft returns the reset value of the "new product" fields.
func NewLineItemDraft() LineItem {
	return LineItem{ProductQuantity: 1, ProductPrice: decimal.Zero}
}

// ParseDate accepts the display layout and ISO dates the remote store has
// been observed to return.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{DateLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
