package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/berniyo/payson-lambda/internal/payson"
)

// parseReceivers reads --receiver values of the form email=amount[,primary].
func parseReceivers(values []string) ([]payson.Receiver, error) {
	receivers := make([]payson.Receiver, 0, len(values))
	for _, s := range values {
		r, err := parseReceiver(s)
		if err != nil {
			return nil, err
		}
		receivers = append(receivers, r)
	}
	return receivers, nil
}

func parseReceiver(s string) (payson.Receiver, error) {
	email, rest, ok := strings.Cut(s, "=")
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return payson.Receiver{}, fmt.Errorf("receiver %q: want email=amount[,primary]", s)
	}

	amount, flag, hasFlag := strings.Cut(rest, ",")
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return payson.Receiver{}, fmt.Errorf("receiver %q: bad amount: %w", s, err)
	}

	r := payson.Receiver{Email: email, Amount: d}
	if hasFlag {
		if strings.TrimSpace(flag) != "primary" {
			return payson.Receiver{}, fmt.Errorf("receiver %q: unknown flag %q", s, flag)
		}
		primary := true
		r.Primary = &primary
	}
	return r, nil
}
