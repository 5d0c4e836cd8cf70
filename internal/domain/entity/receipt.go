package entity

// ReceiptHeader is the business block printed at the top of a receipt
type ReceiptHeader struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	GSTNumber    string `json:"gst_number,omitempty"`
}

// ReceiptLine is one printed item line. Amounts are pre-formatted.
type ReceiptLine struct {
	Name      string `json:"name"`
	Kind      string `json:"item_type"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is the rendered view of an invoice. It is composed at render
// time and never stored.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	InvoiceNumber string        `json:"invoice_number"`
	Date          string        `json:"date"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	Lines         []ReceiptLine `json:"lines"`
	Subtotal      string        `json:"subtotal"`
	GSTPercentage string        `json:"gst_percentage,omitempty"`
	GSTAmount     string        `json:"gst_amount,omitempty"`
	Discount      string        `json:"discount,omitempty"`
	Total         string        `json:"total"`
	Paid          string        `json:"paid"`
	Due           string        `json:"due"`
	PaymentStatus string        `json:"payment_status"`
}
