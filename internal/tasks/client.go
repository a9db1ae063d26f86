package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// queueParams opens the queue file in WAL mode and lets workers wait on each
// other's locks.
const queueParams = "_journal=WAL&_timeout=5000&_busy_timeout=5000"

// Client runs background jobs for the catalog, such as audit retention, on a
// backlite queue stored in its own SQLite file.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

// TasksDBPath derives the queue database path from the catalog database
// path: "data/bookshelf.db" becomes "data/bookshelf-tasks.db".
func TasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens the queue next to the catalog database and installs the
// backlite schema. Long-running workers never hold locks on the catalog file.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	db, err := openQueueDB(TasksDBPath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, err
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?"+queueParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	// Every worker holds a connection while a task runs; the rest serve
	// enqueues and the health check.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Register adds queues. Queues registered after Start are not picked up.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers. Calling it again while running does nothing.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("Task queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for in-flight tasks until ctx expires and reports whether the
// workers drained in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}

	drained := c.queue.Stop(ctx)
	c.running.Store(false)
	if !drained {
		log.Println("Task queue stopped before in-flight tasks finished")
		return false
	}
	log.Println("Task queue stopped")
	return true
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

// Ping checks the queue database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// queueLogger routes backlite's messages to the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("tasks: "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("tasks: error: "+message, params...)
}
