package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"celestia/cmd"
	"celestia/database"
	"celestia/domain/entities"
	"celestia/domain/services"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "analyze-games" {
		if err := handleAnalyzeCommand(); err != nil {
			log.Fatal("Analysis error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: celestia migrate [up|down|status] [args...]")
	}

	// migrations read DATABASE_URL directly; a missing .env is fine
	_ = godotenv.Load()

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleAnalyzeCommand simulates each game and checks its win rate against the expected odds
func handleAnalyzeCommand() error {
	trials := 100000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: celestia analyze-games [trials]")
		}
		trials = n
	}

	failed := 0
	for _, gameType := range []entities.GameType{
		entities.GameTypeCoinFlip,
		entities.GameTypeDiceRoll,
		entities.GameTypeNumberGuess,
	} {
		analysis, err := services.AnalyzeGame(gameType, trials, services.DefaultRandomSource())
		if err != nil {
			return err
		}
		fmt.Println(analysis)
		if !analysis.Fair() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d game(s) deviate from their expected win rate", failed)
	}
	return nil
}
