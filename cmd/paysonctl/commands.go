package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/berniyo/payson-lambda/internal/app"
	"github.com/berniyo/payson-lambda/internal/config"
	"github.com/berniyo/payson-lambda/internal/lib/sl"
	"github.com/berniyo/payson-lambda/internal/payson"
)

// paymentAPI is the part of the Payson client the commands use.
type paymentAPI interface {
	Pay(ctx context.Context, req payson.PayRequest) (*payson.PayResponse, error)
	PaymentDetails(ctx context.Context, token string) (*payson.PaymentDetailsResponse, error)
	UpdatePayment(ctx context.Context, token string, action payson.UpdateAction) (bool, error)
	ResendNotification(ctx context.Context, token string) (bool, error)
	Validate(ctx context.Context, message string) (bool, error)
}

type state struct {
	client paymentAPI
	logger *slog.Logger
}

func (s *state) init() error {
	if s.client != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries command output.
	s.logger = sl.NewTo(cfg.Env, os.Stderr)
	client, err := app.NewClient(cfg, s.logger, nil)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func payCmd(st *state) *cobra.Command {
	var (
		req       payson.PayRequest
		receivers []string
		custom    string
		funding   []string
		feesPayer string
		guarantee string
		noReceipt bool
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Create a payment and print its token and forward URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Receivers, err = parseReceivers(receivers); err != nil {
				return err
			}
			if custom != "" {
				if err := json.Unmarshal([]byte(custom), &req.Custom); err != nil {
					return fmt.Errorf("--custom is not valid JSON: %w", err)
				}
			}
			for _, c := range funding {
				req.FundingConstraints = append(req.FundingConstraints, payson.FundingConstraint(strings.ToUpper(c)))
			}
			req.FeesPayer = payson.FeesPayer(strings.ToUpper(feesPayer))
			req.GuaranteeOffered = payson.GuaranteeOffered(strings.ToUpper(guarantee))
			if noReceipt {
				show := false
				req.ShowReceiptPage = &show
			}

			resp, err := st.client.Pay(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success() {
				return envelopeError(resp.Envelope)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ReturnURL, "return-url", "", "URL the sender returns to after paying")
	f.StringVar(&req.CancelURL, "cancel-url", "", "URL the sender returns to after cancelling")
	f.StringVar(&req.Memo, "memo", "", "Description shown to the sender")
	f.StringVar(&req.SenderEmail, "sender-email", "", "Sender email address")
	f.StringVar(&req.SenderFirstName, "sender-first-name", "", "Sender first name")
	f.StringVar(&req.SenderLastName, "sender-last-name", "", "Sender last name")
	f.StringArrayVar(&receivers, "receiver", nil, "Receiver as email=amount[,primary]; repeatable")
	f.StringVar(&req.CurrencyCode, "currency", "", "Currency code, SEK or EUR")
	f.StringVar(&req.LocaleCode, "locale", "", "Locale code, SV, EN or FI")
	f.StringVar(&req.TrackingID, "tracking-id", "", "Merchant tracking id")
	f.StringVar(&req.IPNNotificationURL, "ipn-url", "", "URL Payson posts notifications to")
	f.StringVar(&custom, "custom", "", "JSON value echoed back in payment details")
	f.StringSliceVar(&funding, "funding", nil, "Allowed funding: bank, creditcard, invoice")
	f.StringVar(&feesPayer, "fees-payer", "", "sender or primaryreceiver")
	f.StringVar(&guarantee, "guarantee", "", "no, optional or required")
	f.BoolVar(&noReceipt, "no-receipt", false, "Skip the Payson receipt page")

	for _, name := range []string{"return-url", "cancel-url", "memo", "sender-email", "sender-first-name", "sender-last-name", "receiver"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func detailsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "details <token>",
		Short: "Show the details of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := st.client.PaymentDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !resp.Success() {
				return envelopeError(resp.Envelope)
			}
			return printJSON(cmd.OutOrStdout(), detailsView(&resp.PaymentDetails))
		},
	}
}

func updateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "update <token> <cancelorder|shiporder|creditorder|refund>",
		Short: "Apply an action to a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(args[1])
			if err != nil {
				return err
			}
			ok, err := st.client.UpdatePayment(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			return printAck(cmd.OutOrStdout(), ok)
		},
	}
}

func resendIPNCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "resend-ipn <token>",
		Short: "Ask Payson to send the notification for a payment again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := st.client.ResendNotification(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printAck(cmd.OutOrStdout(), ok)
		},
	}
}

func validateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <raw-body|->",
		Short: "Check a notification body with Payson; - reads it from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := args[0]
			if body == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				body = string(data)
			}
			ok, err := st.client.Validate(cmd.Context(), body)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "VERIFIED")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "INVALID")
			return fmt.Errorf("notification is not valid")
		},
	}
}

func parseAction(s string) (payson.UpdateAction, error) {
	action := payson.UpdateAction(strings.ToUpper(s))
	switch action {
	case payson.ActionCancelOrder, payson.ActionShipOrder, payson.ActionCreditOrder, payson.ActionRefund:
		return action, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

func printAck(w io.Writer, ok bool) error {
	if !ok {
		fmt.Fprintln(w, "FAILURE")
		return fmt.Errorf("payson did not acknowledge the request")
	}
	fmt.Fprintln(w, "SUCCESS")
	return nil
}

func envelopeError(env payson.ResponseEnvelope) error {
	if len(env.Errors) == 0 {
		return fmt.Errorf("payson returned ack %s", env.Ack)
	}
	msgs := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("payson returned ack %s: %s", env.Ack, strings.Join(msgs, "; "))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// detailsView adds the total amount and drops Raw from the printed details.
func detailsView(p *payson.PaymentDetails) any {
	return struct {
		*payson.PaymentDetails
		Amount string
		Raw    *struct{} `json:",omitempty"`
	}{PaymentDetails: p, Amount: p.Amount().String()}
}
