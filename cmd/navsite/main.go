package main

import (
	"log"

	"github.com/MrSnakeDoc/navsite/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ navsite failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ navsite failed to start: %v", err)
	}
}
