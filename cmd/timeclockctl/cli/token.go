package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schooner-time/timeclock/internal/auth"
	"github.com/schooner-time/timeclock/internal/shared"
)

// TokenOptions defines available flags for the token command.
type TokenOptions struct {
	Subject    string
	Role       string
	Email      string
	TTL        time.Duration
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// TokenSummary describes the JSON response for token.
type TokenSummary struct {
	Token     string    `json:"token"`
	Subject   string    `json:"sub"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenCommand mints a signed credential for local testing and prints it.
func TokenCommand(cfg auth.GateConfig, opts TokenOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	sub, err := uuid.Parse(strings.TrimSpace(opts.Subject))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "token: --sub must be a uuid, got %q\n", opts.Subject)
		return 1
	}
	role, err := shared.ParseRole(strings.TrimSpace(opts.Role))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "token: --role must be one of %v\n", shared.Roles())
		return 1
	}
	if opts.TTL <= 0 {
		opts.TTL = auth.DefaultTTL
	}
	issuer, err := auth.NewIssuer(cfg, opts.TTL)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "token: %v\n", err)
		return 1
	}
	token, expiresAt, err := issuer.Issue(sub, role, strings.TrimSpace(opts.Email))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "token: %v\n", err)
		return 1
	}
	if opts.JSONOutput {
		summary := TokenSummary{Token: token, Subject: sub.String(), Role: string(role), ExpiresAt: expiresAt}
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "token: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintln(opts.Stdout, token)
	return 0
}
