package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/token"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/db"
	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/endpoints"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/tripkeeper/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store/memory"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the tripkeeper application server",
	Long: `Run the tripkeeper application server.

With the postgres store (the default) DATABASE_URL is required and database
migrations are run on startup. Use --no-migrate to skip them.

Session tokens are issued only when TRIPKEEPER_TOKEN_KEY is set.

Example:
  tripctl server
  tripctl server --store memory --port 3000
  tripctl server --watch-config`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if storeFlag, _ := cmd.Flags().GetString("store"); storeFlag != "" {
			cfg.Store = storeFlag
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		audit.SetEnabled(cfg.AuditEnabled)
		if dsn := os.Getenv("AUDIT_DATABASE_URL"); dsn != "" && cfg.AuditEnabled {
			auditStore, err := audit.Open(dsn)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer auditStore.Close()
			audit.SetStore(auditStore)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		documents, health, err := openStore(cfg.Store, !noMigrate)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var tokens *token.Issuer
		if key := os.Getenv("TRIPKEEPER_TOKEN_KEY"); key != "" {
			tokens, err = token.NewIssuer([]byte(key), cfg.TokenLifetime())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Unable to create token issuer: %v\n", err)
				os.Exit(1)
			}
		} else {
			log.Println("TRIPKEEPER_TOKEN_KEY not set, session tokens are disabled")
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(cfg, documents, health, tokens, host, port)
		endpoints.RegisterAll(s)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if watch, _ := cmd.Flags().GetBool("watch-config"); watch {
			go func() {
				if err := watchConfig(ctx, cfg.ConfigFilePath(), s); err != nil {
					log.Printf("Config watch stopped: %v", err)
				}
			}()
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.Shutdown(shutdownCtx)
		}()

		log.Printf("Running server at http://%s:%s with %s store...\n", host, port, cfg.Store)
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().String("store", "", "document store backend (postgres or memory), overrides configuration")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload the configuration file when it changes")
}

// openStore opens the configured document store backend
func openStore(backend string, migrate bool) (store.DocumentStore, store.HealthStore, error) {
	switch backend {
	case config.StoreMemory:
		documents, err := memory.NewDocumentStore(model.Buckets()...)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create memory store: %w", err)
		}
		return documents, documents, nil
	case config.StorePostgres:
		if db.URL() == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
		}
		if migrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				return nil, nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		database, err := db.Connect(db.Config{})
		if err != nil {
			return nil, nil, err
		}
		return gormstore.NewDocumentStore(database), gormstore.NewHealthStore(database), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", backend)
	}
}
