package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"egile/internal/cache"
	"egile/internal/catalog"
	"egile/internal/config"
	"egile/internal/engine"
	"egile/internal/resolver"
	"egile/internal/service"

	"github.com/manifoldco/promptui"
)

var (
	Version = "dev"
)

// Interactive terminal client. Runs the whole assistant in-process against
// the in-memory catalog, so it works offline and leaves no state behind.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	store := catalog.NewMemoryStore(cfg.Catalog.DefaultCurrency)
	if err := catalog.SeedDemo(ctx, store, cfg.Catalog.SeedFakeProducts); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	productResolver := resolver.New(store, cache.NewMemory(time.Duration(cfg.Redis.CacheTTL)*time.Second), cfg.Engine)
	eng := engine.New(productResolver, cfg.Engine)

	var ai service.AIClient
	if cfg.Grok.Enabled {
		ai = service.NewGrokClient(&cfg.Grok)
	}

	dispatcher := service.NewDispatcher(store, "", cfg.Catalog.LowStockThreshold)
	assistant := service.NewAssistant(ai, eng, productResolver, dispatcher, nil, cfg.Engine)

	fmt.Printf("🛒 Egile Store Assistant %s\n", Version)
	if ai != nil {
		fmt.Println("   Grok classification enabled, rule engine on standby.")
	} else {
		fmt.Println("   Offline mode: the rule engine handles everything.")
	}
	fmt.Println("   Type a request, or \"exit\" to quit.")
	fmt.Println()

	prompt := promptui.Prompt{
		Label: "you",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("say something")
			}
			return nil
		},
	}

	for {
		input, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D
			fmt.Println("\nBye!")
			os.Exit(0)
		}
		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}

		resp := assistant.ProcessMessage(ctx, input)
		fmt.Printf("\n%s\n", resp.Reply)
		fmt.Printf("   [%s | %s | confidence %.2f | %dms]\n\n",
			resp.Source, resp.Intent.Action, resp.Intent.Confidence, resp.Took)
	}
}
