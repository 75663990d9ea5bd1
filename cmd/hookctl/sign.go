package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/hookbox/internal/signature"
)

func newSignCmd() *cobra.Command {
	var (
		secret string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the HMAC-SHA256 signature of a body",
		Example: `  hookctl sign --secret s3cret --file payload.json
  echo -n '{"message_id":"1"}' | hookctl sign --secret s3cret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret = resolveSecretFlag(secret)
			if secret == "" {
				return fmt.Errorf("--secret or WEBHOOK_SECRET is required")
			}

			var (
				body []byte
				err  error
			)
			if strings.TrimSpace(file) != "" {
				body, err = os.ReadFile(file)
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signature.Sign(secret, body))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "shared secret (default $WEBHOOK_SECRET)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the body (default stdin)")
	return cmd
}

func resolveSecretFlag(secret string) string {
	if secret = strings.TrimSpace(secret); secret != "" {
		return secret
	}
	return strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))
}
