// quotectl is the quote assistant's operator CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/krea02/ai-agent-demo/internal/cli"
)

func main() {
	_ = godotenv.Load()
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
