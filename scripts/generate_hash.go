//go:build ignore

// generate_hash.go prints an Argon2id hash for the admin password.
// Usage: go run scripts/generate_hash.go <password>
//
// Put the result in .env as ADMIN_PASSWORD_HASH.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/sunusimusa/scratch-app/internal/features/admin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/generate_hash.go <password>")
		os.Exit(1)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		fmt.Printf("Failed to generate salt: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Password hash (put it in .env as ADMIN_PASSWORD_HASH):")
	fmt.Println(admin.HashPassword(os.Args[1], salt))
}
