package invoice

import "github.com/shopspring/decimal"

// SampleInvoices is the bundled dataset shown when the remote store cannot be
// reached. Each call returns a fresh copy.
func SampleInvoices() []Invoice {
	gstPhone := int64(9876543210)
	return []Invoice{
		{
			ID:        "sample-1",
			InvoiceNo: "AQ-2024-001",
			Date:      "15/01/2024",
			CustomerDetails: CustomerDetails{
				Name:    "Ravi Kumar",
				Phone:   9848012345,
				Email:   "ravi.kumar@example.com",
				Address: "Banjara Hills, Hyderabad",
			},
			Products: []LineItem{
				{ProductName: "RO Water Purifier", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(15000), ProductSerialNo: "RO-88231"},
			},
			Transport:   Transport{DeliveredBy: "Suresh", DeliveryDate: "2024-01-16"},
			PaidStatus:  PaidStatusPaid,
			PaymentType: PaymentTypeUPI,
		},
		{
			ID:        "sample-2",
			InvoiceNo: "AQ-2024-002",
			Date:      "22/01/2024",
			CustomerDetails: CustomerDetails{
				Name:  "Lakshmi Traders",
				Phone: 9000011111,
				Email: "accounts@lakshmitraders.example.com",
			},
			Gst: true,
			GstDetails: GstDetails{
				GstName:    "Lakshmi Traders Pvt Ltd",
				GstNo:      "36AABCL1234F1Z5",
				GstPhone:   &gstPhone,
				GstEmail:   "gst@lakshmitraders.example.com",
				GstAddress: "Secunderabad, Telangana",
			},
			Products: []LineItem{
				{ProductName: "Water Softener", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(25000)},
				{ProductName: "Installation Kit", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(2000)},
			},
			Transport:       Transport{DeliveredBy: "Ramesh", DeliveryDate: "2024-01-24"},
			PaidStatus:      PaidStatusPartial,
			PaymentType:     PaymentTypeBank,
			AquakartInvoice: true,
		},
		{
			ID:        "sample-3",
			InvoiceNo: "AQ-2024-003",
			Date:      "03/02/2024",
			CustomerDetails: CustomerDetails{
				Name:  "Sunrise Apartments Association",
				Phone: 9123456780,
			},
			Po: true,
			Products: []LineItem{
				{ProductName: "Replacement Filter", ProductQuantity: 12, ProductPrice: decimal.NewFromInt(850)},
			},
			PaidStatus:  PaidStatusPending,
			PaymentType: PaymentTypeBank,
		},
		{
			ID:        "sample-4",
			InvoiceNo: "AQ-Q-2024-004",
			Date:      "10/02/2024",
			CustomerDetails: CustomerDetails{
				Name:    "Meena Reddy",
				Phone:   9988776655,
				Address: "Kukatpally, Hyderabad",
			},
			Quotation: true,
			Products: []LineItem{
				{ProductName: "UV Purifier", ProductQuantity: 2, ProductPrice: decimal.NewFromInt(12500)},
			},
			AquakartOnlineUser: true,
		},
		{
			ID:        "sample-5",
			InvoiceNo: "AQ-2024-005",
			Date:      "18/02/2024",
			CustomerDetails: CustomerDetails{
				Name:  "Green Valley School",
				Phone: 9012345678,
			},
			Gst: true,
			Po:  true,
			GstDetails: GstDetails{
				GstName: "Green Valley Educational Trust",
				GstNo:   "36AAATG5678K1Z2",
			},
			Products: []LineItem{
				{ProductName: "Commercial RO Plant", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(185000), ProductSerialNo: "CRO-5521"},
				{ProductName: "Annual Maintenance", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(12000)},
			},
			PaidStatus:  PaidStatusPending,
			PaymentType: PaymentTypeCard,
		},
	}
}
