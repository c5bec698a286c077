package main

import (
	"context"
	"fmt"
	"os"

	"auction-house/internal/assetstore"
	auction "auction-house/internal/auctionService"
	"auction-house/internal/commission"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize store: %v\n", err)
		os.Exit(1)
	}

	assets, err := assetstore.NewLocalAssetStore(cfg.AssetDir, cfg.AssetBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize asset store: %v\n", err)
		os.Exit(1)
	}

	svc := auction.NewAuctionService(store, assets, commission.NewCalculator(cfg.CommissionRate))

	// settles ended auctions in the background, like a cron
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunSettlementLoop(ctx, cfg.SettleInterval)

	router := server.SetupRouter(svc)

	addr := ":" + cfg.Port
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore selects the persistence backend from configuration
func buildStore(cfg utils.Config) (repository.Store, error) {
	switch cfg.Store {
	case "mongo":
		return repository.NewMongoStore(context.Background(), cfg.MongoURI, cfg.MongoDB)
	default:
		return repository.NewMemoryRepo(), nil
	}
}
