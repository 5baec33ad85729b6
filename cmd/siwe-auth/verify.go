package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/layer-3/siwe-auth/internal/eth"
	"github.com/layer-3/siwe-auth/internal/siwe"
	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	var (
		messageFile string
		signature   string
		domain      string
		maxAge      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a signed sign-in message offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(messageFile)
			if err != nil {
				return err
			}

			msg, err := siwe.DecodePayload(string(raw))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "domain:   %s\n", msg.Domain)
			fmt.Fprintf(out, "address:  %s\n", msg.Address.Hex())
			fmt.Fprintf(out, "uri:      %s\n", msg.URI)
			fmt.Fprintf(out, "chain id: %d\n", msg.ChainID)
			fmt.Fprintf(out, "nonce:    %s\n", msg.Nonce)

			if domain != "" && !strings.EqualFold(domain, msg.Domain) {
				return fmt.Errorf("message was issued for %q, not %q", msg.Domain, domain)
			}
			if err := msg.CheckWindow(time.Now(), maxAge, time.Minute); err != nil {
				return err
			}

			recovered, err := eth.VerifySignature(msg.String(), signature, msg.Address)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "signer:   %s (valid)\n", recovered.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&messageFile, "message-file", "", "file holding the message text or JSON envelope")
	cmd.Flags().StringVar(&signature, "signature", "", "0x-prefixed signature")
	cmd.Flags().StringVar(&domain, "domain", "", "expected domain")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "reject messages issued longer ago, 0 disables")
	_ = cmd.MarkFlagRequired("message-file")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func signCmd() *cobra.Command {
	var messageFile string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message file with the key in SIWE_DEV_PRIVATE_KEY (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			hexKey := os.Getenv("SIWE_DEV_PRIVATE_KEY")
			if hexKey == "" {
				return errors.New("SIWE_DEV_PRIVATE_KEY is not set")
			}
			signer, err := eth.KeySignerFromHex(hexKey)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(messageFile)
			if err != nil {
				return err
			}
			sig, err := signer.SignMessage(string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&messageFile, "message-file", "", "file holding the exact text to sign")
	_ = cmd.MarkFlagRequired("message-file")
	return cmd
}
