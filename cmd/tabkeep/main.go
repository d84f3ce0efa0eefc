package main

import (
	"log"

	"github.com/tabkeep/tabkeepd/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ tabkeep failed to start: %v", err)
	}
}
