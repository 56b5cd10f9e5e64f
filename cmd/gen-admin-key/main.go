package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Generates a fresh admin API key and the bcrypt hash to put in
// ADMIN_API_KEY_HASH. The plain key is printed once and never stored.
func main() {
	key := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(key), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔑 New admin API key (store it somewhere safe):")
	fmt.Println()
	fmt.Printf("  %s\n", key)
	fmt.Println()
	fmt.Println("Add to .env:")
	fmt.Printf("  ADMIN_API_KEY_HASH=%s\n", string(hash))
}
