package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

// PasswordEnvVar lets scripts pass the password without exposing it in the
// process list.
const PasswordEnvVar = "BOOKSHELF_USER_PASSWORD"

type CreateUserCommand struct {
	Email    string
	Name     string
	Password string

	Database config.Database
	Auth     config.Auth
	Out      io.Writer
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{
		Database: cfg.Database,
		Auth:     cfg.Auth,
		Out:      os.Stdout,
	}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address used to log in (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password; falls back to $"+PasswordEnvVar)
	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a reader account without going through the HTTP API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -email ann@example.com -name Ann -password 'correct horse'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s=secret %s create-user -email ann@example.com -name Ann\n", PasswordEnvVar, os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(PasswordEnvVar)
	}

	var missing []string
	if cmd.Email == "" {
		missing = append(missing, "-email")
	}
	if cmd.Name == "" {
		missing = append(missing, "-name")
	}
	if cmd.Password == "" {
		missing = append(missing, "-password")
	}
	if len(missing) > 0 {
		fs.Usage()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cmd.Auth)

	userID, err := service.Register(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return fmt.Errorf("invalid user: %s", strings.Join(apperr.Problems(err), "; "))
		}
		return err
	}

	fmt.Fprintf(cmd.Out, "Created user %d (%s)\n", userID, strings.TrimSpace(cmd.Email))
	return nil
}
