// Command genkeys prints a fresh pair of HS512 secrets for the access and
// refresh key domains, ready to export as environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-jwt-server/token/keys"
)

func main() {
	access, err := keys.GenerateSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	refresh, err := keys.GenerateSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("JWT_SECRET_ACCESS=%s\n", access)
	fmt.Printf("JWT_SECRET_REFRESH=%s\n", refresh)
}
