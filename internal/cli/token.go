package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"catalog/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
)

// 更新系APIを叩くためのトークンを発行する
func newTokenCmd() *cobra.Command {
	var (
		sub    string
		role   string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the stock mutation endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("JWT_SECRET or --secret is required")
			}
			if sub == "" {
				return errors.New("--sub is required")
			}

			now := time.Now()
			claims := jwt.MapClaims{
				"sub":  sub,
				"role": role,
				"iat":  now.Unix(),
				"exp":  now.Add(ttl).Unix(),
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "admin", "operator id stored as the token subject")
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "role claim (ADMIN or USER)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	return cmd
}
