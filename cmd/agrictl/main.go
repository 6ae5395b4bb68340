package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/agricontract-backend/internal/bootstrap"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/security"
)

func main() {
	_ = godotenv.Load()
	os.Exit(realMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	logg := logger.New(logger.Options{
		ServiceName: "agrictl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})

	backend, err := bootstrap.Open(ctx, cfg, logg)
	if err != nil {
		fmt.Fprintf(stderr, "store: %v\n", err)
		return 1
	}
	defer backend.Close()

	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		fmt.Fprintf(stderr, "password hasher: %v\n", err)
		return 2
	}

	a, err := newApp(backend.Repo, hasher, logg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer a.close()

	if err := a.run(ctx, args); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	if typed := pkgerrors.As(err); typed != nil {
		fmt.Fprintf(w, "error: %s: %s\n", typed.Code(), typed.Message())
		if fields, ok := typed.Details().(map[string]string); ok {
			for field, msg := range fields {
				fmt.Fprintf(w, "  %s %s\n", field, msg)
			}
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `agrictl manages farm supply contracts.

Usage:
  agrictl <command> [flags]

Account:
  register         -name -email -password -confirm-password -role farmer|factory
  login            -email -password
  logout
  whoami

Contracts:
  contracts        list contracts (available for farmers, own for factories, -all for every contract)
  create-contract  -crop -quantity -price -duration -delivery YYYY-MM-DD -description   (factory)
  apply            -contract ID   (farmer)
  applications     list applications visible to the current user
  approve          -application ID   (factory)
  reject           -application ID   (factory)
  dashboard        stats and lists for the current user

Set AGRI_STORE_BACKEND, AGRI_DB_DSN and AGRI_STORE_NAMESPACE to choose where data lives.
`)
}
