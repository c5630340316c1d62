package main

import (
	"github.com/joho/godotenv"

	"github.com/paperquery/paperquery/internal/adapters/driving/cli"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cli.Execute()
}
