package invoice

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func item(name string, qty int, price int64) LineItem {
	return LineItem{ProductName: name, ProductQuantity: qty, ProductPrice: decimal.NewFromInt(price)}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		products []LineItem
		want     int64
	}{
		{"no products", nil, 0},
		{"single item", []LineItem{item("Purifier", 1, 15000)}, 15000},
		{"two items", []LineItem{item("Softener", 1, 25000), item("Kit", 1, 2000)}, 27000},
		{"quantity multiplies", []LineItem{item("Filter", 12, 850)}, 10200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invoice{Products: tt.products}
			if got := inv.Total(); !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("Total() = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "₹0.00"},
		{decimal.NewFromInt(999), "₹999.00"},
		{decimal.NewFromInt(15000), "₹15,000.00"},
		{decimal.NewFromInt(27000), "₹27,000.00"},
		{decimal.NewFromInt(150000), "₹1,50,000.00"},
		{decimal.NewFromInt(12345678), "₹1,23,45,678.00"},
		{decimal.RequireFromString("1234.5"), "₹1,234.50"},
		{decimal.NewFromInt(-2500), "-₹2,500.00"},
	}

	for _, tt := range tests {
		if got := FormatINR(tt.in); got != tt.want {
			t.Errorf("FormatINR(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayDate(t *testing.T) {
	if got := DisplayDate("2024-03-05"); got != "05/03/2024" {
		t.Errorf("DisplayDate(iso) = %q", got)
	}
	if got := DisplayDate("05/03/2024"); got != "05/03/2024" {
		t.Errorf("DisplayDate(display) = %q", got)
	}
	if got := DisplayDate("next tuesday"); got != "next tuesday" {
		t.Errorf("DisplayDate(garbage) = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	phone := int64(123)
	orig := Invoice{
		InvoiceNo:  "A-1",
		Products:   []LineItem{item("Purifier", 1, 100)},
		GstDetails: GstDetails{GstPhone: &phone},
	}

	cp := orig.Clone()
	cp.Products[0].ProductName = "changed"
	cp.Products = append(cp.Products, item("extra", 1, 1))
	*cp.GstDetails.GstPhone = 999

	if orig.Products[0].ProductName != "Purifier" || len(orig.Products) != 1 {
		t.Errorf("clone shares products with original: %+v", orig.Products)
	}
	if *orig.GstDetails.GstPhone != 123 {
		t.Errorf("clone shares gst phone with original")
	}
}

func TestEmpty(t *testing.T) {
	now := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	inv := Empty(now)

	if inv.Date != "07/03/2024" {
		t.Errorf("Date = %q, want 07/03/2024", inv.Date)
	}
	if inv.Gst || inv.Po || inv.Quotation {
		t.Errorf("flags should be false")
	}
	if inv.Products == nil || len(inv.Products) != 0 {
		t.Errorf("Products should be empty and non-nil")
	}
	if !inv.IsDraft() {
		t.Errorf("template should be a draft")
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name      string
		draft     LineItem
		wantField string
		wantErr   error
	}{
		{"valid", item("Purifier", 1, 100), "", nil},
		{"empty name", item("", 1, 100), "productName", ErrRequired},
		{"blank name", item("   ", 1, 100), "productName", ErrRequired},
		{"zero price", item("Purifier", 1, 0), "productPrice", ErrInvalidPrice},
		{"negative price", item("Purifier", 1, -5), "productPrice", ErrNegativePrice},
		{"zero quantity", item("Purifier", 0, 100), "productQuantity", ErrInvalidQty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error is not a ValidationError")
			}
			if _, ok := verr.Map()[tt.wantField]; !ok {
				t.Errorf("missing field %q in %v", tt.wantField, verr.Map())
			}
		})
	}
}

func TestValidateInvoice(t *testing.T) {
	inv := Invoice{
		Date:        "31/02/2024",
		PaidStatus:  "refunded",
		PaymentType: PaymentTypeCash,
		Products:    []LineItem{item("", 0, 10)},
	}

	err := inv.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := verr.Map()
	for _, f := range []string{"invoiceNo", "date", "customerDetails.name", "paidStatus", "products[0].productName", "products[0].productQuantity"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing field %q in %v", f, fields)
		}
	}
	if _, ok := fields["paymentType"]; ok {
		t.Errorf("paymentType cash should be valid")
	}

	good := SampleInvoices()[0]
	if err := good.Validate(); err != nil {
		t.Errorf("sample invoice should be valid: %v", err)
	}
}

func TestJSONShape(t *testing.T) {
	raw := `{"id":"abc","invoiceNo":"AQ-1","date":"01/01/2024","customerDetails":{"name":"X","phone":99},
	"gst":true,"po":false,"quotation":false,"gstDetails":{"gstName":"","gstNo":"","gstPhone":null,"gstEmail":"","gstAddress":""},
	"products":[{"productName":"P","productQuantity":2,"productPrice":150.5}],
	"transport":{"deliveredBy":"","deliveryDate":""},"paidStatus":"paid","paymentType":"upi",
	"aquakartOnlineUser":false,"aquakartInvoice":true}`

	var inv Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if inv.ID != "abc" || !inv.Gst || inv.PaidStatus != PaidStatusPaid || inv.GstDetails.GstPhone != nil {
		t.Errorf("decoded invoice mismatch: %+v", inv)
	}
	if !inv.Total().Equal(decimal.NewFromInt(301)) {
		t.Errorf("Total() = %s, want 301", inv.Total())
	}

	out, err := json.Marshal(inv.Products[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"productName":"P","productQuantity":2,"productPrice":150.5}`
	if string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}
}

func TestSampleInvoicesCoverEveryCategory(t *testing.T) {
	var regular, gst, po, quotation int
	for _, inv := range SampleInvoices() {
		if inv.IsRegular() {
			regular++
		}
		if inv.Gst {
			gst++
		}
		if inv.Po {
			po++
		}
		if inv.Quotation {
			quotation++
		}
	}
	if regular == 0 || gst == 0 || po == 0 || quotation == 0 {
		t.Errorf("sample data should populate every tab: regular=%d gst=%d po=%d quotation=%d", regular, gst, po, quotation)
	}
}

func TestValidateTagRules(t *testing.T) {
	base := SampleInvoices()[0]

	tests := []struct {
		name      string
		mutate    func(inv *Invoice)
		wantField string
		wantErr   error
	}{
		{"blank customer name", func(inv *Invoice) { inv.CustomerDetails.Name = " \t" }, "customerDetails.name", ErrRequired},
		{"unknown payment type", func(inv *Invoice) { inv.PaymentType = "cheque" }, "paymentType", ErrInvalidPayment},
		{"unknown paid status", func(inv *Invoice) { inv.PaidStatus = "refunded" }, "paidStatus", ErrInvalidStatus},
		{"unparseable date", func(inv *Invoice) { inv.Date = "next week" }, "date", ErrInvalidDate},
		{"second product quantity", func(inv *Invoice) {
			inv.Products = append(inv.Products, item("Filter", 0, 850))
		}, "products[" + strconv.Itoa(len(base.Products)) + "].productQuantity", ErrInvalidQty},
		{"negative product price", func(inv *Invoice) { inv.Products[0].ProductPrice = decimal.NewFromInt(-1) }, "products[0].productPrice", ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := base.Clone()
			tt.mutate(&inv)

			err := inv.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error is not a ValidationError: %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.wantField {
				t.Errorf("fields = %v, want only %q", verr.Map(), tt.wantField)
			}
		})
	}
}

func TestValidateUnsetEnumsAllowed(t *testing.T) {
	inv := SampleInvoices()[0].Clone()
	inv.PaidStatus = ""
	inv.PaymentType = ""
	if err := inv.Validate(); err != nil {
		t.Errorf("unset paid status and payment type should be valid: %v", err)
	}
}
