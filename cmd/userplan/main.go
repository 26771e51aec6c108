package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	var (
		idFlag      string
		emailFlag   string
		statusFlag  string
		creditsFlag int
		roleFlag    string
	)

	flag.StringVar(&idFlag, "id", "", "profile ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "profile email to update")
	flag.StringVar(&statusFlag, "status", "", "subscription status to assign (free, pro); empty keeps current")
	flag.IntVar(&creditsFlag, "credits", -1, "credit balance to set; <0 applies the status default, or keeps current when -status is empty")
	flag.StringVar(&roleFlag, "role", "", "role to assign (user, admin); empty keeps current")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}

	var status domain.SubscriptionStatus
	if strings.TrimSpace(statusFlag) != "" {
		parsed, ok := domain.ParseSubscriptionStatus(statusFlag)
		if !ok {
			exitWithError(fmt.Errorf("unsupported status %q", statusFlag))
		}
		status = parsed
	}
	var role domain.UserRole
	if strings.TrimSpace(roleFlag) != "" {
		parsed, ok := domain.ParseRole(roleFlag)
		if !ok {
			exitWithError(fmt.Errorf("unsupported role %q", roleFlag))
		}
		role = parsed
	}
	credits := creditsFlag
	if credits < 0 && status != "" {
		credits = domain.CreditsForStatus(status)
	}
	if status == "" && role == "" && credits < 0 {
		exitWithError(errors.New("nothing to update: pass -status, -credits or -role"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "userplan").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	if userID == "" {
		lookupCtx, cancelLookup := context.WithTimeout(context.Background(), 5*time.Second)
		err := runner.QueryRow(lookupCtx, sqlinline.QSelectProfileIDByEmail, email).Scan(&userID)
		cancelLookup()
		if infra.IsNoRows(err) {
			exitWithError(fmt.Errorf("no profile with email %s", email))
		}
		if err != nil {
			exitWithError(fmt.Errorf("failed to load profile: %w", err))
		}
	}

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()
	row := runner.QueryRow(updateCtx, sqlinline.QSetProfilePlan, userID, string(status), credits, string(role))

	var (
		updatedID      string
		updatedRole    string
		updatedStatus  string
		updatedCredits int
	)
	if err := row.Scan(&updatedID, &updatedRole, &updatedStatus, &updatedCredits); err != nil {
		if infra.IsNoRows(err) {
			exitWithError(fmt.Errorf("no profile with id %s", userID))
		}
		exitWithError(fmt.Errorf("failed to update profile: %w", err))
	}

	fmt.Printf("Profile %s updated: role=%s subscription_status=%s credits_remaining=%d\n",
		updatedID, updatedRole, updatedStatus, updatedCredits)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
