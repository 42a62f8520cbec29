package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/serverutils"
)

// devtoken mints a bearer token signed with JWT_SECRET for local testing.
func main() {
	userId := flag.Int64("user", 0, "user id to put in the user_id claim")
	role := flag.String("role", entity.UserRoleUser, "role claim (User or Admin)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userId <= 0 {
		log.Fatal("Error: -user must be a positive id")
	}

	cfg := config.Load()
	token, err := serverutils.GenerateToken(cfg.Auth.JwtSecret, *userId, *role, *ttl)
	if err != nil {
		log.Fatalf("Error: failed to sign token: %v", err)
	}
	fmt.Println(token)
}
