package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gdhanush27/Form-Pulse/internal/config"
	"github.com/gdhanush27/Form-Pulse/internal/service"
)

// mint-token issues a respondent JWT for local development and testing.
// In production the identity provider in front of the gateway mints
// these.
func main() {
	cfg := config.Load()
	authService := service.NewAuthService(cfg)

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Mint Respondent Token ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter upstream token (optional): ")
	upstreamToken, _ := reader.ReadString('\n')
	upstreamToken = strings.TrimSpace(upstreamToken)

	token, err := authService.GenerateRespondentToken(name, email, upstreamToken)
	if err != nil {
		fmt.Printf("Error generating token: %v\n", err)
		return
	}

	fmt.Printf("\n%s\n", token)
}
