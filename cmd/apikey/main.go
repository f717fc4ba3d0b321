// Command apikey mints an API key entry for the API_KEYS environment
// variable: it generates a random secret, prints the bearer credential, and
// prints the "principal:hash" entry to configure on the server.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/identity"
)

func main() {
	principal := flag.String("principal", "", "principal id for the new key")
	flag.Parse()
	if *principal == "" {
		fmt.Fprintln(os.Stderr, "usage: apikey -principal <id>")
		os.Exit(2)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "generate secret: %v\n", err)
		os.Exit(1)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := identity.HashCredential(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash secret: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("bearer credential: %s.%s\n", *principal, secret)
	fmt.Printf("API_KEYS entry:    %s:%s\n", *principal, hash)
}
