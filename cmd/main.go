package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"shopsphere/config"
	"shopsphere/controllers"
	"shopsphere/database"
	"shopsphere/models"
	"shopsphere/payment"
	"shopsphere/repository"
	"shopsphere/repository/inmem"
	"shopsphere/routes"
	"shopsphere/services"
)

var Version = "dev"

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:          "shopsphere",
		Short:        "ShopSphere storefront API",
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// openStores returns the configured storage backend and a func releasing it.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repository.Stores, func(), error) {
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		return inmem.New(), func() {}, nil
	}
	client, db, err := database.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.DBName)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	log.Info("connected to mongo", "db", cfg.Store.DBName)
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error("mongo disconnect", "error", err)
		}
	}
	return repository.NewMongoStores(db), closeFn, nil
}

func buildServices(cfg *config.Config, stores *repository.Stores, log *slog.Logger) *services.Services {
	gateway := payment.NewStripe(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	return services.New(stores, gateway, services.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenTTL:    cfg.Auth.TokenTTL,
		Currency:    cfg.Payment.Currency,
		ShippingFee: cfg.Pricing.ShippingFee,
		TaxRate:     cfg.Pricing.TaxRate,
	}, log)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log := newLogger(cfg)
			if !cfg.IsDevelopment() {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stores, closeStores, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStores()

			svc := buildServices(cfg, stores, log)
			router := routes.NewRouter(controllers.New(svc, log), svc.Auth, routes.Options{
				CORSOrigins:    cfg.Server.CORSOrigins,
				RequestTimeout: cfg.Server.RequestTimeout,
				Logger:         log,
			})

			srv := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", srv.Addr, "env", cfg.Server.Env, "driver", cfg.Store.Driver)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := config.GetEnv("MONGO_URI", "")
			dbName := config.GetEnv("DB_NAME", "")
			if uri == "" || dbName == "" {
				return errors.New("MONGO_URI and DB_NAME are required")
			}
			client, db, err := database.ConnectMongo(cmd.Context(), uri, dbName)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if err := database.EnsureIndexes(cmd.Context(), db); err != nil {
				return err
			}
			for coll, idx := range database.Indexes() {
				fmt.Printf("%s: %d indexes\n", coll, len(idx))
			}
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var in services.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Store.Driver == config.DriverMemory {
				return errors.New("create-admin needs a persistent store")
			}
			log := newLogger(cfg)
			stores, closeStores, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStores()

			u, err := buildServices(cfg, stores, log).Auth.CreateUser(cmd.Context(), in, models.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Printf("created admin %s (%s)\n", u.Email, u.ID.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "login email")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
