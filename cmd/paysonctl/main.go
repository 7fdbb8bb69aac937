package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var st state

	rootCmd := &cobra.Command{
		Use:           "paysonctl",
		Short:         "Command line access to the Payson payment API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init()
		},
	}

	rootCmd.AddCommand(payCmd(&st))
	rootCmd.AddCommand(detailsCmd(&st))
	rootCmd.AddCommand(updateCmd(&st))
	rootCmd.AddCommand(resendIPNCmd(&st))
	rootCmd.AddCommand(validateCmd(&st))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
