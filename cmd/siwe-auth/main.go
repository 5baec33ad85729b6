package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "siwe-auth",
		Short:        "Sign-In with Ethereum authentication service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), verifyCmd(), signCmd())
	return root
}
