package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/smarttransit/subway-routing/internal/utils"
	"github.com/smarttransit/subway-routing/pkg/jwt"
)

// Prints a fresh JWT_SECRET and, with -token, an admin access token signed
// with it (or with -secret when given).
func main() {
	issueToken := flag.Bool("token", false, "also issue an admin access token")
	secret := flag.String("secret", "", "sign the token with an existing JWT_SECRET")
	subject := flag.String("subject", "admin", "token subject")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for Subway Routing")
	fmt.Println("===========================================")
	fmt.Println()

	if *secret == "" {
		generated, err := utils.GenerateJWTSecret()
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		*secret = generated

		fmt.Println("Add this to your .env file:")
		fmt.Println()
		fmt.Printf("JWT_SECRET=%s\n", *secret)
		fmt.Println("ADMIN_API_ENABLED=true")
		fmt.Println()
	}

	if *issueToken {
		token, err := jwt.NewService(*secret, *expiry).GenerateAccessToken(*subject, []string{jwt.RoleAdmin})
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("Admin token (valid for %s):\n\n%s\n\n", *expiry, token)
	}

	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
