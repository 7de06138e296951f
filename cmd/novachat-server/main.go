// Command novachat-server is the CLI entrypoint: it loads a JSON
// configuration document, wires the auth/store/router stack, and runs the
// HTTPS session engine until a termination signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ProphetRu/NovaChatServer/cache/ristretto"
	"github.com/ProphetRu/NovaChatServer/config"
	"github.com/ProphetRu/NovaChatServer/handlers"
	"github.com/ProphetRu/NovaChatServer/jwtauth"
	"github.com/ProphetRu/NovaChatServer/logging"
	"github.com/ProphetRu/NovaChatServer/migrations"
	"github.com/ProphetRu/NovaChatServer/router"
	"github.com/ProphetRu/NovaChatServer/server"
	"github.com/ProphetRu/NovaChatServer/store"
)

// version is the build version reported by --version.
const version = "0.1.0"

const defaultConfigFile = "config.json"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the CLI contract: "server [--config|-c PATH]
// [--help|-h] [--version|-v] [CONFIG_FILE]". Help and version exit 0,
// argument errors exit 1, other startup errors exit nonzero with a stderr
// diagnostic.
func run(args []string) int {
	fs := flag.NewFlagSet("novachat-server", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var configPath string
	fs.StringVar(&configPath, "config", "", "path to the JSON configuration file")
	fs.StringVar(&configPath, "c", "", "path to the JSON configuration file (shorthand)")
	showVersion := fs.Bool("version", false, "print the version and exit")
	fs.BoolVar(showVersion, "v", false, "print the version and exit (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--config|-c PATH] [--help|-h] [--version|-v] [CONFIG_FILE]\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if *showVersion {
		fmt.Println("novachat-server " + version)
		return 0
	}

	if configPath == "" {
		if rest := fs.Args(); len(rest) > 0 {
			configPath = rest[0]
		} else {
			configPath = defaultConfigFile
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "novachat-server: "+err.Error())
		return 1
	}

	if err := start(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "novachat-server: "+err.Error())
		return 1
	}
	return 0
}

// start wires every component and blocks in Server.Run until shutdown.
func start(cfg *config.Config) error {
	provider := config.NewProvider(cfg)

	logDaemon := logging.New(provider, slog.Default())
	recordChan, daemonCtx := logDaemon.Chan()
	logger := slog.New(logging.NewBatchHandler(provider, recordChan, daemonCtx))
	handlers.Logger = logger

	pool, err := store.Open(store.Config{
		Address:           cfg.Database.Address,
		Port:              cfg.Database.Port,
		Username:          cfg.Database.Username,
		Password:          cfg.Database.Password,
		DBName:            cfg.Database.DBName,
		MaxConnections:    cfg.Database.MaxConnections,
		ConnectionTimeout: cfg.ConnectTimeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("open store pool: %w", err)
	}

	if err := migrations.Apply(context.Background(), pool.DB()); err != nil {
		pool.Close()
		return fmt.Errorf("apply schema migrations: %w", err)
	}

	dataStore := store.New(pool)

	jwtManager, err := jwtauth.NewManager(cfg.JWT.SecretKey, cfg.AccessTokenExpiry(), cfg.RefreshTokenExpiry(), logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("build JWT manager: %w", err)
	}
	revocation := jwtauth.NewRevocationSet()

	searchCache, err := ristretto.New[[]*handlers.SearchResultUser]("small")
	if err != nil {
		pool.Close()
		return fmt.Errorf("build search cache: %w", err)
	}

	deps := &handlers.Deps{
		Store:         dataStore,
		JWTManager:    jwtManager,
		Revocation:    revocation,
		SearchCache:   searchCache,
		AccessExpiry:  cfg.AccessTokenExpiry(),
		RefreshExpiry: cfg.RefreshTokenExpiry(),
	}

	rt := router.New(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, http.StatusNotFound, handlers.CodeEndpointNotFound, "no route matches this path")
	}))
	registerRoutes(rt, deps)

	srv := server.NewServer(provider, rt, logger)
	srv.AddDaemon(logDaemon)
	srv.AddDaemon(jwtauth.NewSweepDaemon(revocation, 5*time.Minute, logger))
	srv.AddDaemon(store.NewSweepDaemon(dataStore, time.Hour, logger))

	srv.Run() // blocks; calls os.Exit internally
	return nil
}
