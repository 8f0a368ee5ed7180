// Command tokengen signs platform tokens for local development: editor
// access tokens for /api/v1/editors and buyer tokens for /mozpay/auth/verify.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	userID      string
	username    string
	permissions []string
	ttl         time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "tokengen",
	Short:        "Sign development tokens with the configured JWT secret",
	SilenceUsage: true,
}

var editorCmd = &cobra.Command{
	Use:   "editor",
	Short: "Sign an editor access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd, auth.TokenTypeAccess, permissions)
	},
}

var buyerCmd = &cobra.Command{
	Use:   "buyer",
	Short: "Sign a buyer token for the payment lobby",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd, auth.TokenTypeBuyer, nil)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user-id", "", "user uuid (random when empty)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "dev", "user name")
	rootCmd.PersistentFlags().DurationVar(&ttl, "ttl", 0, "token lifetime (configured expiration when zero)")
	editorCmd.Flags().StringSliceVar(&permissions, "permission", []string{"Editors:Review"}, "granted permissions, repeatable")

	rootCmd.AddCommand(editorCmd, buyerCmd)
}

func issue(cmd *cobra.Command, tokenType auth.TokenType, perms []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	id := uuid.New()
	if userID != "" {
		if id, err = uuid.Parse(userID); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	token, err := auth.NewJWTService(cfg.JWT).GenerateToken(auth.GenerateTokenInput{
		UserID:      id,
		Username:    username,
		Permissions: perms,
		TokenType:   tokenType,
		TTL:         ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(token)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
