// Command adminpw resets an admin account password directly in the database.
// Intended for operators locked out of the web login.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/term"
	_ "modernc.org/sqlite"

	"garage/internal/adapters/storage"
	accountStore "garage/internal/adapters/storage/account"
)

func main() {
	dbPath := flag.String("db", "garage.db", "path to the database file")
	email := flag.String("email", "", "email of the account to reset")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: adminpw -email admin@example.com [-db garage.db]")
		os.Exit(2)
	}

	password, err := promptPassword()
	if err != nil {
		log.Fatalf("failed to read password: %v", err)
	}

	db, err := sql.Open("sqlite", *dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ctx := context.Background()
	store := accountStore.NewSQLiteStore(db)
	acct, err := store.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("failed to load account %s: %v", *email, err)
	}

	if err := acct.SetPassword(password); err != nil {
		log.Fatalf("failed to set password: %v", err)
	}
	acct.ResetFailedLogins()

	if err := store.Save(ctx, acct); err != nil {
		log.Fatalf("failed to save account: %v", err)
	}
	fmt.Printf("Password updated for %s\n", acct.Email)
}

// promptPassword reads the new password twice without echoing it.
func promptPassword() (string, error) {
	fmt.Print("New password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
