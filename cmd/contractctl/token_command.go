package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"contract-backend/internal/shared/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var email string
	var premium bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a bearer token for the API using JWT_SECRET or the profile's jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			keys, err := auth.NewKeyring(cfg.JWTSecret, cfg.Env)
			if err != nil {
				return err
			}
			claims := auth.Claims{Sub: args[0], Email: email, Premium: premium}
			if ttl > 0 {
				claims.Exp = time.Now().Add(ttl).Unix()
			}
			token, err := keys.Sign(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().BoolVar(&premium, "premium", false, "Grant the premium tier")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	return cmd
}
