package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// AuditCleanupCommand deletes old audit events once, outside the scheduler.
type AuditCleanupCommand struct {
	RetentionDays int

	Database config.Database
	Out      io.Writer
}

func NewAuditCleanupCommand(cfg *config.Config) *AuditCleanupCommand {
	return &AuditCleanupCommand{
		RetentionDays: cfg.Audit.RetentionDays,
		Database:      cfg.Database,
		Out:           os.Stdout,
	}
}

func (cmd *AuditCleanupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("audit-cleanup", flag.ContinueOnError)

	fs.IntVar(&cmd.RetentionDays, "days", cmd.RetentionDays, "Keep events younger than this many days")
	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s audit-cleanup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete audit events older than the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.RetentionDays < 1 {
		fs.Usage()
		return fmt.Errorf("days must be at least 1")
	}
	return nil
}

func (cmd *AuditCleanupCommand) Run() error {
	db, err := database.NewDatabase(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cleaner := audit.NewService(auditrepo.NewRepository(db.DB))
	if err := (tasks.InlineAuditCleanup{Cleaner: cleaner}).EnqueueAuditCleanup(cmd.RetentionDays); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "Audit events older than %d days removed\n", cmd.RetentionDays)
	return nil
}
