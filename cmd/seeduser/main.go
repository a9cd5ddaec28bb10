// seeduser appends a login to the Users sheet through the sheets API.
// Usage: go run ./cmd/seeduser -username admin -password secret -role admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"sheetpos/internal/config"
	"sheetpos/internal/infra"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "plain-text password (required)")
	role := flag.String("role", model.RoleAdmin, "admin | manager | cashier")
	display := flag.String("name", "", "display name (defaults to username)")
	flag.Parse()

	if *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	switch strings.ToLower(*role) {
	case model.RoleAdmin, model.RoleManager, model.RoleCashier:
	default:
		log.Fatal().Str("role", *role).Msg("unknown role")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	registry, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sheet schema")
	}

	client := infra.NewSheetsClient(cfg.SheetsAPIURL, cfg.SheetsAPIKey, cfg.SheetsTimeout(), nil)
	users := repository.NewUserRepository(repository.NewSheetRepository(client, registry))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = users.FindByUsername(ctx, *username)
	switch {
	case err == nil:
		log.Fatal().Str("username", *username).Msg("user already exists; edit the row in the sheet instead")
	case !errors.Is(err, repository.ErrUserNotFound):
		log.Fatal().Err(err).Msg("failed to read Users sheet")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}
	if *display == "" {
		*display = *username
	}
	if err := users.Create(ctx, model.User{
		Username:     *username,
		PasswordHash: string(hash),
		Role:         strings.ToLower(*role),
		DisplayName:  *display,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to append user")
	}
	fmt.Printf("user %q created with role %s\n", *username, strings.ToLower(*role))
}
