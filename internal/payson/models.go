package payson

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FeesPayer selects who pays the Payson fees.
type FeesPayer string

const (
	FeesPayerSender          FeesPayer = "SENDER"
	FeesPayerPrimaryReceiver FeesPayer = "PRIMARYRECEIVER"
)

// FundingConstraint restricts the payment methods offered to the sender.
type FundingConstraint string

const (
	FundingBank       FundingConstraint = "BANK"
	FundingCreditCard FundingConstraint = "CREDITCARD"
	FundingInvoice    FundingConstraint = "INVOICE"
)

// GuaranteeOffered controls Payson Guarantee for the payment.
type GuaranteeOffered string

const (
	GuaranteeNo       GuaranteeOffered = "NO"
	GuaranteeOptional GuaranteeOffered = "OPTIONAL"
	GuaranteeRequired GuaranteeOffered = "REQUIRED"
)

// UpdateAction is the action keyword sent to PaymentUpdate.
type UpdateAction string

const (
	ActionCancelOrder UpdateAction = "CANCELORDER"
	ActionShipOrder   UpdateAction = "SHIPORDER"
	ActionCreditOrder UpdateAction = "CREDITORDER"
	ActionRefund      UpdateAction = "REFUND"
)

// Payment status values reported by PaymentDetails and notifications.
const (
	StatusCreated    = "CREATED"
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusCredited   = "CREDITED"
	StatusError      = "ERROR"
	StatusAborted    = "ABORTED"
	StatusCanceled   = "CANCELED"
	StatusExpired    = "EXPIRED"
)

// Receiver is a payment recipient. It is sent in pay requests and read
// back from payment details.
type Receiver struct {
	Email     string
	Amount    decimal.Decimal
	Primary   *bool
	FirstName string
	LastName  string
}

func encodeReceiver(e entry, r Receiver) error {
	e.f.setString(e.key("email"), r.Email)
	e.f.setDecimal(e.key("amount"), r.Amount)
	e.f.setBool(e.key("primary"), r.Primary)
	e.f.setString(e.key("firstName"), r.FirstName)
	e.f.setString(e.key("lastName"), r.LastName)
	return nil
}

func decodeReceiver(e entry) (Receiver, error) {
	amount, err := e.f.decimal(e.key("amount"))
	if err != nil {
		return Receiver{}, err
	}
	primary, err := e.f.bool(e.key("primary"))
	if err != nil {
		return Receiver{}, err
	}
	return Receiver{
		Email:     e.get("email"),
		Amount:    amount,
		Primary:   primary,
		FirstName: e.get("firstName"),
		LastName:  e.get("lastName"),
	}, nil
}

// OrderItem is one invoice line. Payson documents some of these fields as
// optional but rejects requests that leave any of them out.
type OrderItem struct {
	Description   string
	SKU           string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TaxPercentage decimal.Decimal
}

func encodeOrderItem(e entry, o OrderItem) error {
	e.f[e.key("description")] = o.Description
	e.f[e.key("sku")] = o.SKU
	e.f.setDecimal(e.key("quantity"), o.Quantity)
	e.f.setDecimal(e.key("unitPrice"), o.UnitPrice)
	e.f.setDecimal(e.key("taxPercentage"), o.TaxPercentage)
	return nil
}

func decodeOrderItem(e entry) (OrderItem, error) {
	var (
		o   = OrderItem{Description: e.get("description"), SKU: e.get("sku")}
		err error
	)
	if o.Quantity, err = e.f.optionalDecimal(e.key("quantity")); err != nil {
		return OrderItem{}, err
	}
	if o.UnitPrice, err = e.f.optionalDecimal(e.key("unitPrice")); err != nil {
		return OrderItem{}, err
	}
	if o.TaxPercentage, err = e.f.optionalDecimal(e.key("taxPercentage")); err != nil {
		return OrderItem{}, err
	}
	return o, nil
}

func encodeFundingConstraint(e entry, c FundingConstraint) error {
	e.f.setString(e.key("constraint"), string(c))
	return nil
}

// Error is one entry of the errorList in a response envelope.
type Error struct {
	ID        int
	Message   string
	Parameter string
}

func (e Error) String() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%d: %s (%s)", e.ID, e.Message, e.Parameter)
	}
	return fmt.Sprintf("%d: %s", e.ID, e.Message)
}

func decodeError(e entry) (Error, error) {
	raw := e.get("errorId")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return Error{}, fmt.Errorf("%w: %s=%q", ErrMalformedResponse, e.key("errorId"), raw)
	}
	return Error{
		ID:        id,
		Message:   e.get("message"),
		Parameter: e.get("parameter"),
	}, nil
}

// AckSuccess is the acknowledgement of a request Payson processed successfully.
const AckSuccess = "SUCCESS"

// ResponseEnvelope is present in every API response.
type ResponseEnvelope struct {
	Ack           string
	Timestamp     time.Time
	CorrelationID string
	Errors        []Error
}

// Success reports whether the request itself (not the payment) succeeded.
func (r ResponseEnvelope) Success() bool {
	return r.Ack == AckSuccess
}

// ParseResponseEnvelope decodes the responseEnvelope.* and errorList fields.
func ParseResponseEnvelope(f Fields) (ResponseEnvelope, error) {
	ack, ok := f["responseEnvelope.ack"]
	if !ok {
		return ResponseEnvelope{}, fmt.Errorf("%w: missing responseEnvelope.ack", ErrMalformedResponse)
	}

	env := ResponseEnvelope{
		Ack:           ack,
		CorrelationID: f["responseEnvelope.correlationId"],
	}

	ts, err := f.timestamp("responseEnvelope.timestamp")
	if err != nil {
		return ResponseEnvelope{}, err
	}
	if ts != nil {
		env.Timestamp = *ts
	}

	if env.Errors, err = decodeList(f, errorList, decodeError); err != nil {
		return ResponseEnvelope{}, err
	}
	return env, nil
}

// PayResponse is returned by Client.Pay.
type PayResponse struct {
	Envelope ResponseEnvelope
	Token    string
	// ForwardURL is where the buyer's browser is sent to complete the
	// payment. Empty when no token was issued.
	ForwardURL string
}

// Success reports whether the pay request succeeded.
func (r *PayResponse) Success() bool {
	return r.Envelope.Success()
}

func parsePayResponse(forwardTemplate string, f Fields) (*PayResponse, error) {
	env, err := ParseResponseEnvelope(f)
	if err != nil {
		return nil, err
	}

	resp := &PayResponse{Envelope: env, Token: f["TOKEN"]}
	if resp.Token != "" {
		resp.ForwardURL = fmt.Sprintf(forwardTemplate, resp.Token)
	}
	return resp, nil
}

// ShippingAddress is attached to invoice payments.
type ShippingAddress struct {
	Name          string
	StreetAddress string
	PostalCode    string
	City          string
	Country       string
}

// PaymentDetails describes an existing payment. Both PaymentDetails
// responses and IPN notification bodies decode into it.
type PaymentDetails struct {
	PurchaseID        string
	Token             string
	SenderEmail       string
	Status            string
	Type              string
	GuaranteeStatus   string
	GuaranteeDeadline *time.Time
	InvoiceStatus     string
	// Custom is the JSON value passed as PayRequest.Custom, decoded into
	// maps, slices and scalars. Nil when none was sent.
	Custom          any
	TrackingID      string
	CurrencyCode    string
	ReceiverFee     decimal.Decimal
	Receivers       []Receiver
	OrderItems      []OrderItem
	ShippingAddress *ShippingAddress
	// Raw keeps every field of the message, including ones not modelled here.
	Raw Fields
}

// Amount is the sum of all receiver amounts.
func (p *PaymentDetails) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, r := range p.Receivers {
		total = total.Add(r.Amount)
	}
	return total
}

// ParsePaymentDetails decodes payment details from a response or from an
// IPN body. Absent fields are left at their zero value; present fields
// that cannot be decoded fail the parse.
func ParsePaymentDetails(f Fields) (*PaymentDetails, error) {
	p := &PaymentDetails{
		PurchaseID:      f["purchaseId"],
		Token:           f["token"],
		SenderEmail:     f["senderEmail"],
		Status:          f["status"],
		Type:            f["type"],
		GuaranteeStatus: f["guaranteeStatus"],
		InvoiceStatus:   f["invoiceStatus"],
		TrackingID:      f["trackingId"],
		CurrencyCode:    f["currencyCode"],
		Raw:             f.Clone(),
	}

	var err error
	if p.GuaranteeDeadline, err = f.timestamp("guaranteeDeadlineTimestamp"); err != nil {
		return nil, err
	}
	if p.Custom, err = f.json("custom"); err != nil {
		return nil, err
	}
	if p.ReceiverFee, err = f.optionalDecimal("receiverFee"); err != nil {
		return nil, err
	}
	if p.Receivers, err = decodeList(f, receiverList, decodeReceiver); err != nil {
		return nil, err
	}
	if p.OrderItems, err = decodeList(f, orderItemList, decodeOrderItem); err != nil {
		return nil, err
	}

	if f.Has("shippingAddress.name") {
		p.ShippingAddress = &ShippingAddress{
			Name:          f["shippingAddress.name"],
			StreetAddress: f["shippingAddress.streetAddress"],
			PostalCode:    f["shippingAddress.postalCode"],
			City:          f["shippingAddress.city"],
			Country:       f["shippingAddress.country"],
		}
	}
	return p, nil
}

// PaymentDetailsResponse is returned by Client.PaymentDetails.
type PaymentDetailsResponse struct {
	PaymentDetails
	Envelope ResponseEnvelope
}

// Success reports whether the details request succeeded.
func (r *PaymentDetailsResponse) Success() bool {
	return r.Envelope.Success()
}

func parsePaymentDetailsResponse(f Fields) (*PaymentDetailsResponse, error) {
	env, err := ParseResponseEnvelope(f)
	if err != nil {
		return nil, err
	}
	details, err := ParsePaymentDetails(f)
	if err != nil {
		return nil, err
	}
	return &PaymentDetailsResponse{PaymentDetails: *details, Envelope: env}, nil
}
