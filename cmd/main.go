package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/yungbote/sonder-backend/internal/app"
)

func main() {
	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
