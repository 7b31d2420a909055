package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"agencydesk/internal/authz"
	"agencydesk/internal/middleware"
)

// newTokenCmd signs a session token for local use and scripts. Normal
// sessions are issued by the identity service that shares the secret.
func newTokenCmd(e *env) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a JWT for the given user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := authz.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			tok, err := middleware.SignToken([]byte(e.cfg.Auth.JWTSecret), args[0], r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(authz.RoleAdmin), "admin | employee | client")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
