package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/oprema/internal/api"
	"github.com/erazemk/oprema/internal/config"
	"github.com/erazemk/oprema/internal/db"
	"github.com/erazemk/oprema/internal/model"
	"github.com/erazemk/oprema/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: oprema <command> [flags]

Commands:
  init    create the database and an admin account
  serve   run the API server

Flags:
  -d, -db <path>          SQLite database path (default: oprema.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -c, -config <path>      YAML config file (optional; flags win)
  -u, -user <name>        admin username for init (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
}

type options struct {
	dbPath     string
	addr       string
	configPath string
	adminUser  string
	logPath    string

	cfg *config.Config
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("oprema", flag.ContinueOnError)
	fs.Usage = usage

	opts := &options{}
	fs.StringVar(&opts.dbPath, "db", "", "")
	fs.StringVar(&opts.dbPath, "d", "", "")
	fs.StringVar(&opts.addr, "addr", "", "")
	fs.StringVar(&opts.addr, "a", "", "")
	fs.StringVar(&opts.configPath, "config", "", "")
	fs.StringVar(&opts.configPath, "c", "", "")
	fs.StringVar(&opts.adminUser, "user", "Admin", "")
	fs.StringVar(&opts.adminUser, "u", "Admin", "")
	fs.StringVar(&opts.logPath, "log", "", "")
	fs.StringVar(&opts.logPath, "l", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	opts.cfg = &config.Config{}
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		opts.cfg = cfg
	}

	// Flags win over the config file; defaults fill the rest.
	if opts.dbPath == "" {
		opts.dbPath = opts.cfg.Database
	}
	if opts.dbPath == "" {
		opts.dbPath = "oprema.sqlite3"
	}
	if opts.addr == "" {
		opts.addr = opts.cfg.Addr
	}
	if opts.addr == "" {
		opts.addr = ":8080"
	}
	if opts.logPath == "" {
		opts.logPath = opts.cfg.LogPath
	}

	return opts, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "-h" || command == "-help" || command == "help" {
		usage()
		os.Exit(0)
	}

	opts, err := parseFlags(os.Args[2:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	switch command {
	case "init":
		if err := runInit(opts); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(opts); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func runInit(opts *options) error {
	if _, err := os.Stat(opts.dbPath); err == nil {
		return fmt.Errorf("database already exists: %s", opts.dbPath)
	}

	database, password, err := initDatabase(opts.dbPath, opts.adminUser)
	if err != nil {
		return err
	}
	database.Close()

	printInitResult(opts.dbPath, opts.adminUser, password)
	return nil
}

func runServe(opts *options) error {
	// Auto-init on first run so `serve` alone works on a fresh host.
	if _, err := os.Stat(opts.dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(opts.dbPath, opts.adminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(opts.dbPath, opts.adminUser, password)
		fmt.Println()
	}

	database, err := db.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	slog.Info("database ready", "path", opts.dbPath)

	ctx := context.Background()

	// JWT secret precedence: config file, then the database (auto-generated
	// on first run).
	jwtSecret := opts.cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	if opts.cfg.DefaultCurrency != "" {
		if err := store.SetSetting(ctx, database, store.SettingDefaultCurrency, opts.cfg.DefaultCurrency); err != nil {
			return fmt.Errorf("storing default currency: %w", err)
		}
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret))

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", opts.addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// initDatabase creates a new database, runs migrations, and creates the admin user.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("migrating database: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	ctx := context.Background()
	_, err = store.CreateUser(ctx, database, adminUsername, string(hash), model.RoleAdmin)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("creating admin user: %w", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
