// mktoken mints operator JWTs for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"greenergy-billing/internal/auth"
)

func main() {
	username := flag.String("username", "", "account username (token subject)")
	role := flag.String("role", "user", "account role: user or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is required")
		os.Exit(1)
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "-username is required")
		os.Exit(1)
	}
	normalized, ok := auth.NormalizeRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(1)
	}

	token, err := auth.SignJWT(*username, normalized, []byte(secret), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
