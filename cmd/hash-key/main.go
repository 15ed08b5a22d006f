package main

import (
	"fmt"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// hash-key generates the bcrypt hash expected in ADMIN_KEY_HASH. The
// key itself never touches the terminal scrollback.
func main() {
	fmt.Print("Enter admin key: ")
	byteKey, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading key")
		return
	}
	fmt.Println()

	if len(byteKey) < 12 {
		fmt.Println("Error: admin key must be at least 12 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword(byteKey, bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error hashing key: %v\n", err)
		return
	}

	fmt.Println("Set this in your environment:")
	fmt.Printf("ADMIN_KEY_HASH='%s'\n", string(hash))
}
