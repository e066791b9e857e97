package main

import (
	"fmt"
	"os"

	"plantid/internal/api"
	"plantid/internal/config"
	"plantid/internal/ui"
)

func main() {
	cfg := config.Load()

	client := api.New(cfg.APIBase)
	p := ui.NewProgram(client)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
