package payson

import "github.com/shopspring/decimal"

// PayRequest holds the input of the Pay operation. Zero values of optional
// fields are not transmitted.
type PayRequest struct {
	ReturnURL       string
	CancelURL       string
	Memo            string
	SenderEmail     string
	SenderFirstName string
	SenderLastName  string
	Receivers       []Receiver

	IPNNotificationURL string
	LocaleCode         string
	CurrencyCode       string
	FundingConstraints []FundingConstraint
	FeesPayer          FeesPayer
	InvoiceFee         *decimal.Decimal
	// Custom is sent as JSON text and comes back in PaymentDetails.Custom.
	Custom           any
	TrackingID       string
	GuaranteeOffered GuaranteeOffered
	OrderItems       []OrderItem
	// ShowReceiptPage defaults to true on the server; only an explicit
	// false is sent.
	ShowReceiptPage *bool
}

func (r PayRequest) fields() (Fields, error) {
	f := Fields{}
	f.setString("returnUrl", r.ReturnURL)
	f.setString("cancelUrl", r.CancelURL)
	f.setString("memo", r.Memo)
	f.setString("senderEmail", r.SenderEmail)
	f.setString("senderFirstName", r.SenderFirstName)
	f.setString("senderLastName", r.SenderLastName)
	if err := encodeList(f, receiverList, r.Receivers, encodeReceiver); err != nil {
		return nil, err
	}

	f.setString("ipnNotificationUrl", r.IPNNotificationURL)
	f.setString("localeCode", r.LocaleCode)
	f.setString("currencyCode", r.CurrencyCode)
	if err := encodeList(f, fundingList, r.FundingConstraints, encodeFundingConstraint); err != nil {
		return nil, err
	}
	f.setString("feesPayer", string(r.FeesPayer))
	if r.InvoiceFee != nil {
		f.setDecimal("invoiceFee", *r.InvoiceFee)
	}
	if err := f.setJSON("custom", r.Custom); err != nil {
		return nil, err
	}
	f.setString("trackingId", r.TrackingID)
	f.setString("guaranteeOffered", string(r.GuaranteeOffered))
	if err := encodeList(f, orderItemList, r.OrderItems, encodeOrderItem); err != nil {
		return nil, err
	}
	if r.ShowReceiptPage != nil && !*r.ShowReceiptPage {
		f.setBool("showReceiptPage", r.ShowReceiptPage)
	}
	return f, nil
}
