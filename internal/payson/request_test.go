package payson

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func minimalPayRequest() PayRequest {
	return PayRequest{
		ReturnURL:       "http://localhost/return_url",
		CancelURL:       "http://localhost/cancel_url",
		Memo:            "test memo",
		SenderEmail:     "test-shopper@payson.se",
		SenderFirstName: "Tester",
		SenderLastName:  "Räksmörgås",
		Receivers: []Receiver{
			{Email: "testagent-1@payson.se", Amount: decimal.RequireFromString("125")},
		},
	}
}

func TestPayRequestFieldsMinimal(t *testing.T) {
	f, err := minimalPayRequest().fields()
	require.NoError(t, err)

	require.Equal(t, Fields{
		"returnUrl":                       "http://localhost/return_url",
		"cancelUrl":                       "http://localhost/cancel_url",
		"memo":                            "test memo",
		"senderEmail":                     "test-shopper@payson.se",
		"senderFirstName":                 "Tester",
		"senderLastName":                  "Räksmörgås",
		"receiverList.receiver(0).email":  "testagent-1@payson.se",
		"receiverList.receiver(0).amount": "125",
	}, f)
}

func TestPayRequestShowReceiptPage(t *testing.T) {
	req := minimalPayRequest()

	f, err := req.fields()
	require.NoError(t, err)
	require.False(t, f.Has("showReceiptPage"), "default must not be sent")

	req.ShowReceiptPage = boolPtr(true)
	f, err = req.fields()
	require.NoError(t, err)
	require.False(t, f.Has("showReceiptPage"), "explicit true must not be sent")

	req.ShowReceiptPage = boolPtr(false)
	f, err = req.fields()
	require.NoError(t, err)
	require.Equal(t, "false", f["showReceiptPage"])
}

func TestPayRequestFieldsOptional(t *testing.T) {
	fee := decimal.RequireFromString("29.00")
	req := minimalPayRequest()
	req.Receivers[0].Primary = boolPtr(false)
	req.Receivers[0].FirstName = "Åke"
	req.Receivers[0].LastName = "Öster"
	req.IPNNotificationURL = "https://shop.example.se/ipn"
	req.LocaleCode = "SV"
	req.CurrencyCode = "SEK"
	req.FundingConstraints = []FundingConstraint{FundingBank, FundingCreditCard}
	req.FeesPayer = FeesPayerPrimaryReceiver
	req.InvoiceFee = &fee
	req.Custom = []any{"list", "of", "custom", "things", "åäö"}
	req.TrackingID = "ÅÄÖ"
	req.GuaranteeOffered = GuaranteeNo
	req.OrderItems = []OrderItem{{
		Description:   "description item one",
		SKU:           "1",
		Quantity:      decimal.NewFromInt(10),
		UnitPrice:     decimal.NewFromInt(5),
		TaxPercentage: decimal.RequireFromString("0.25"),
	}}

	f, err := req.fields()
	require.NoError(t, err)

	expected := map[string]string{
		"receiverList.receiver(0).primary":            "false",
		"receiverList.receiver(0).firstName":          "Åke",
		"receiverList.receiver(0).lastName":           "Öster",
		"ipnNotificationUrl":                          "https://shop.example.se/ipn",
		"localeCode":                                  "SV",
		"currencyCode":                                "SEK",
		"fundingList.fundingConstraint(0).constraint": "BANK",
		"fundingList.fundingConstraint(1).constraint": "CREDITCARD",
		"feesPayer":                                   "PRIMARYRECEIVER",
		"invoiceFee":                                  "29",
		"custom":                                      `["list","of","custom","things","åäö"]`,
		"trackingId":                                  "ÅÄÖ",
		"guaranteeOffered":                            "NO",
		"orderItemList.orderItem(0).description":      "description item one",
		"orderItemList.orderItem(0).sku":              "1",
		"orderItemList.orderItem(0).quantity":         "10",
		"orderItemList.orderItem(0).unitPrice":        "5",
		"orderItemList.orderItem(0).taxPercentage":    "0.25",
	}
	for k, v := range expected {
		require.Equal(t, v, f[k], k)
	}
	require.Len(t, f, 8+len(expected))
}

func TestPayRequestZeroInvoiceFeeIsSent(t *testing.T) {
	zero := decimal.Zero
	req := minimalPayRequest()
	req.InvoiceFee = &zero

	f, err := req.fields()
	require.NoError(t, err)
	require.Equal(t, "0", f["invoiceFee"])
}
