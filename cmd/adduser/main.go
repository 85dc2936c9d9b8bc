// cmd/adduser/main.go
// Creates a user in the database, or resets the password of an existing one.
//
// Usage:
//
//	go run ./cmd/adduser -username padraic -password testing
//	go run ./cmd/adduser -username padraic -password changed -reset
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/padraicbc/feedlog/config"
	bundb "github.com/padraicbc/feedlog/db"
	"github.com/padraicbc/feedlog/store"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	reset := flag.Bool("reset", false, "update the password if the user already exists")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}

	ctx := context.Background()
	cfg := config.Load()
	db, err := bundb.Open(ctx, cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	users := store.NewUsers(db, 0)
	_, err = users.Register(ctx, *username, *password)
	switch {
	case err == nil:
		fmt.Printf("user %q created\n", *username)
	case errors.Is(err, store.ErrDuplicateUsername) && *reset:
		if err := users.SetPassword(ctx, *username, *password); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		fmt.Printf("password for %q updated\n", *username)
	case errors.Is(err, store.ErrDuplicateUsername):
		log.Fatalf("user %q already exists (pass -reset to change the password)", *username)
	default:
		log.Fatalf("add user: %v", err)
	}
}
