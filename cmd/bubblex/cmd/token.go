package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a server started with an auth secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth := GetConfig().Server.Auth
		if cmd.Flags().Changed("secret") {
			auth.Secret, _ = cmd.Flags().GetString("secret")
		}
		if auth.Secret == "" {
			return errors.New("no auth secret configured (server.auth.secret or --secret)")
		}
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tok, err := server.IssueToken(auth.Secret, auth.Issuer, subject, ttl)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", "", "HS256 secret (defaults to server.auth.secret)")
	tokenCmd.Flags().String("subject", "bubblex-client", "token subject")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
