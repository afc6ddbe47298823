package types

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further placement transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFailed || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusNotPaid       PaymentStatus = "NOT_PAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
)

// ResultCode is the outcome the Drop-in reports to the storefront after a payment attempt.
type ResultCode string

const (
	ResultCodeAuthorised ResultCode = "Authorised"
	ResultCodePending    ResultCode = "Pending"
	ResultCodeReceived   ResultCode = "Received"
	ResultCodeRefused    ResultCode = "Refused"
	ResultCodeCancelled  ResultCode = "Cancelled"
	ResultCodeError      ResultCode = "Error"
)

// Placeable reports whether an order may be placed for this result code.
func (c ResultCode) Placeable() bool {
	return c == ResultCodeAuthorised || c == ResultCodePending || c == ResultCodeReceived
}
