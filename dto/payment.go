package dto

// GatewayPayment mirrors one payment record from the gateway's
// reporting API. Amounts are in the smallest currency unit.
type GatewayPayment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

type GatewayPaymentList struct {
	Count int              `json:"count"`
	Items []GatewayPayment `json:"items"`
}

type GatewayOrder struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

type GatewayOrderList struct {
	Count int            `json:"count"`
	Items []GatewayOrder `json:"items"`
}

type PaymentReportQuery struct {
	From  int64 `query:"from" validate:"omitempty,min=0"`
	To    int64 `query:"to" validate:"omitempty,min=0"`
	Count int   `query:"count" validate:"omitempty,min=1,max=100"`
	Skip  int   `query:"skip" validate:"omitempty,min=0"`
}

func (r PaymentReportQuery) Validate() error {
	return validate.Struct(r)
}
