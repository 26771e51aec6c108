package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag   string
		clearFlag bool
		showFlag  bool
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key to store as the shared master key (fallbacks to GEMINI_API_KEY)")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored master key")
	flag.BoolVar(&showFlag, "show", false, "print the masked master key and exit")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" && !clearFlag && !showFlag {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			exitWithError(fmt.Errorf("API key is required via -key or GEMINI_API_KEY"))
		}
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to create pool: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "masterkey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	if showFlag {
		current, err := store.MasterKey(ctxExec)
		if err != nil {
			exitWithError(fmt.Errorf("failed to load master key: %w", err))
		}
		if current == "" {
			fmt.Println("master key not configured")
			return
		}
		fmt.Printf("master key: %s\n", credentials.Mask(current))
		return
	}

	if clearFlag {
		key = ""
	}
	if err := store.SetMasterKey(ctxExec, key); err != nil {
		exitWithError(fmt.Errorf("failed to persist master key: %w", err))
	}
	if key == "" {
		fmt.Println("master key cleared")
		return
	}
	fmt.Printf("master key %s stored successfully\n", credentials.Mask(key))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
