// Command dev-token signs a session token for local development and
// optionally provisions the matching user row.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/repository"
)

type output struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	UserID    int64     `json:"user_id,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("AUTH_JWT_SECRET"), "HMAC secret shared with the API")
		issuer      = flag.String("issuer", os.Getenv("AUTH_JWT_ISSUER"), "Token issuer")
		audience    = flag.String("audience", os.Getenv("AUTH_JWT_AUDIENCE"), "Token audience")
		databaseURL = flag.String("database-url", "", "Provision the user in this database (optional)")
		subject     = flag.String("subject", "", "Auth provider subject (default: random)")
		email       = flag.String("email", "dev@linkpage.local", "User email")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *subject == "" {
		*subject = "dev_" + uuid.NewString()
	}

	verifier, err := auth.NewVerifier(*secret, *issuer, *audience)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verifier:", err)
		os.Exit(1)
	}

	out := output{
		Subject:   *subject,
		Email:     *email,
		ExpiresAt: time.Now().Add(*ttl).UTC().Truncate(time.Second),
	}

	if *databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		repo, err := repository.New(ctx, *databaseURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "connect database:", err)
			os.Exit(1)
		}
		defer repo.Close()

		user, err := repo.GetOrCreateUser(ctx, *subject, *email)
		if err != nil {
			fmt.Fprintln(os.Stderr, "provision user:", err)
			os.Exit(1)
		}
		out.UserID = user.ID
	}

	out.Token, err = verifier.Sign(*subject, *email, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
