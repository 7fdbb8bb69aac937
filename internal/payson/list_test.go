package payson

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

// roundTrip sends fields through the wire encoding and back.
func roundTrip(t *testing.T, f Fields) Fields {
	t.Helper()
	parsed, err := ParseFields(f.Encode())
	require.NoError(t, err)
	return parsed
}

func requireReceiversEqual(t *testing.T, want, got []Receiver) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Email, got[i].Email, "receiver %d", i)
		require.True(t, want[i].Amount.Equal(got[i].Amount), "receiver %d amount %s != %s", i, want[i].Amount, got[i].Amount)
		require.Equal(t, want[i].Primary, got[i].Primary, "receiver %d", i)
		require.Equal(t, want[i].FirstName, got[i].FirstName, "receiver %d", i)
		require.Equal(t, want[i].LastName, got[i].LastName, "receiver %d", i)
	}
}

func TestReceiverListRoundTrip(t *testing.T) {
	many := make([]Receiver, 12)
	for i := range many {
		many[i] = Receiver{
			Email:  fmt.Sprintf("shop-%d@example.se", i),
			Amount: decimal.New(int64(1000+i), -2),
		}
		if i%3 == 0 {
			many[i].Primary = boolPtr(i == 0)
			many[i].FirstName = "Åke"
			many[i].LastName = "Öster"
		}
	}

	cases := map[string][]Receiver{
		"none": nil,
		"one minimal": {
			{Email: "testagent-1@payson.se", Amount: decimal.RequireFromString("125")},
		},
		"one full": {
			{
				Email:     "testagent-1@payson.se",
				Amount:    decimal.RequireFromString("125.50"),
				Primary:   boolPtr(false),
				FirstName: "Åke",
				LastName:  "Öster",
			},
		},
		"many": many,
	}

	for name, receivers := range cases {
		t.Run(name, func(t *testing.T) {
			f := Fields{}
			require.NoError(t, encodeList(f, receiverList, receivers, encodeReceiver))

			got, err := decodeList(roundTrip(t, f), receiverList, decodeReceiver)
			require.NoError(t, err)
			requireReceiversEqual(t, receivers, got)
		})
	}
}

func TestReceiverEncodingOmitsAbsentFields(t *testing.T) {
	f := Fields{}
	require.NoError(t, encodeList(f, receiverList, []Receiver{
		{Email: "a@example.se", Amount: decimal.RequireFromString("10.00")},
		{Email: "b@example.se", Amount: decimal.RequireFromString("5.5"), Primary: boolPtr(true)},
	}, encodeReceiver))

	require.Equal(t, Fields{
		"receiverList.receiver(0).email":   "a@example.se",
		"receiverList.receiver(0).amount":  "10",
		"receiverList.receiver(1).email":   "b@example.se",
		"receiverList.receiver(1).amount":  "5.5",
		"receiverList.receiver(1).primary": "true",
	}, f)
}

func TestDecodeListStopsAtFirstMissingAnchor(t *testing.T) {
	f := Fields{
		"receiverList.receiver(0).email":  "a@example.se",
		"receiverList.receiver(0).amount": "1",
		"receiverList.receiver(1).email":  "b@example.se",
		"receiverList.receiver(1).amount": "2",
		// index 2 has no email, so index 3 is never reached
		"receiverList.receiver(2).amount": "3",
		"receiverList.receiver(3).email":  "d@example.se",
		"receiverList.receiver(3).amount": "4",
	}

	got, err := decodeList(f, receiverList, decodeReceiver)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b@example.se", got[1].Email)
}

func TestDecodeReceiverPrimaryAnyCase(t *testing.T) {
	f := Fields{
		"receiverList.receiver(0).email":   "a@example.se",
		"receiverList.receiver(0).amount":  "1",
		"receiverList.receiver(0).primary": "True",
		"receiverList.receiver(1).email":   "b@example.se",
		"receiverList.receiver(1).amount":  "2",
		"receiverList.receiver(1).primary": "FALSE",
	}

	got, err := decodeList(f, receiverList, decodeReceiver)
	require.NoError(t, err)
	require.Equal(t, boolPtr(true), got[0].Primary)
	require.Equal(t, boolPtr(false), got[1].Primary)
}

func TestDecodeReceiverMalformed(t *testing.T) {
	cases := map[string]Fields{
		"missing amount": {
			"receiverList.receiver(0).email": "a@example.se",
		},
		"bad amount": {
			"receiverList.receiver(0).email":  "a@example.se",
			"receiverList.receiver(0).amount": "12,50",
		},
		"bad primary": {
			"receiverList.receiver(0).email":   "a@example.se",
			"receiverList.receiver(0).amount":  "1",
			"receiverList.receiver(0).primary": "yes",
		},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeList(f, receiverList, decodeReceiver)
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestOrderItemListRoundTrip(t *testing.T) {
	items := []OrderItem{
		{
			Description:   "description item one",
			SKU:           "1",
			Quantity:      decimal.RequireFromString("10"),
			UnitPrice:     decimal.RequireFromString("5"),
			TaxPercentage: decimal.RequireFromString("0.25"),
		},
		{
			Description:   "Kanelbullar, 6-pack",
			SKU:           "BULLE-6",
			Quantity:      decimal.RequireFromString("2.5"),
			UnitPrice:     decimal.RequireFromString("39.90"),
			TaxPercentage: decimal.RequireFromString("0.12"),
		},
	}

	f := Fields{}
	require.NoError(t, encodeList(f, orderItemList, items, encodeOrderItem))
	require.Equal(t, "0.25", f["orderItemList.orderItem(0).taxPercentage"])
	require.Equal(t, "BULLE-6", f["orderItemList.orderItem(1).sku"])

	got, err := decodeList(roundTrip(t, f), orderItemList, decodeOrderItem)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range items {
		require.Equal(t, items[i].Description, got[i].Description)
		require.Equal(t, items[i].SKU, got[i].SKU)
		require.True(t, items[i].Quantity.Equal(got[i].Quantity))
		require.True(t, items[i].UnitPrice.Equal(got[i].UnitPrice))
		require.True(t, items[i].TaxPercentage.Equal(got[i].TaxPercentage))
	}
}

func TestUnicodeRoundTrip(t *testing.T) {
	texts := []string{
		"Räksmörgås",
		"ÅÄÖ",
		"Cafe\u0301 combining acute",
		"日本語のメモ",
		"emoji 🧾 receipt",
		"a&b=c+d%e",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			f := Fields{}
			f.setString("memo", text)
			require.NoError(t, encodeList(f, receiverList, []Receiver{
				{Email: "a@example.se", Amount: decimal.NewFromInt(1), FirstName: text},
			}, encodeReceiver))

			parsed := roundTrip(t, f)
			require.Equal(t, text, parsed["memo"])

			got, err := decodeList(parsed, receiverList, decodeReceiver)
			require.NoError(t, err)
			require.Equal(t, text, got[0].FirstName)
		})
	}
}
