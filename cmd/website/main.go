// Comando website: el server HTTP del sitio del club.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/socis-ca/website/internal/cache"
	memcache "github.com/socis-ca/website/internal/cache/memory"
	redcache "github.com/socis-ca/website/internal/cache/redis"
	"github.com/socis-ca/website/internal/config"
	"github.com/socis-ca/website/internal/email"
	"github.com/socis-ca/website/internal/http/controllers/admin"
	"github.com/socis-ca/website/internal/http/controllers/auth"
	"github.com/socis-ca/website/internal/http/controllers/events"
	"github.com/socis-ca/website/internal/http/controllers/execs"
	"github.com/socis-ca/website/internal/http/controllers/newsletter"
	"github.com/socis-ca/website/internal/http/controllers/products"
	"github.com/socis-ca/website/internal/http/controllers/roboticon"
	"github.com/socis-ca/website/internal/http/middlewares"
	"github.com/socis-ca/website/internal/http/router"
	"github.com/socis-ca/website/internal/http/services/session"
	jwtx "github.com/socis-ca/website/internal/jwt"
	"github.com/socis-ca/website/internal/oauth/google"
	"github.com/socis-ca/website/internal/observability/logger"
	"github.com/socis-ca/website/internal/rate"
	"github.com/socis-ca/website/internal/store"
	"github.com/socis-ca/website/internal/store/nodb"
	"github.com/socis-ca/website/internal/store/pg"
	migrations "github.com/socis-ca/website/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path al YAML de configuración")
	migrate := flag.Bool("migrate", false, "aplicar migraciones pendientes al arrancar")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// El logger todavía no existe: esto va directo a stderr.
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Logs.Level,
		ServiceName: "website",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Storage ───
	var st store.Store
	if cfg.Storage.DSN == "" {
		log.Warn("no DSN configured, running without database")
		st = nodb.New()
	} else {
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
			MinConns:        cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: parseLifetime(cfg.Storage.Postgres.ConnMaxLifetime),
		})
		if err != nil {
			log.Fatal("opening postgres pool", logger.Err(err))
		}
		defer pgStore.Close()

		if *migrate || cfg.Flags.Migrate {
			if err := pgStore.Migrate(ctx, migrations.FS); err != nil {
				log.Fatal("running migrations", logger.Err(err))
			}
		}
		st = pgStore
	}

	// ─── Cache y rate limit ───
	var (
		c            cache.Cache
		loginLimiter rate.Limiter
	)
	switch cfg.Cache.Kind {
	case "redis":
		rc := redcache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		c = rc
		if cfg.Rate.Enabled {
			loginLimiter = rate.NewRedisLimiter(rc.Client(), "rl:login:", cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		}
	default:
		c = memcache.New(cfg.MemoryCacheTTL())
		if cfg.Rate.Enabled {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		}
	}

	// ─── Tokens ───
	codec, err := jwtx.NewCodec(jwtx.Options{
		Issuer:         cfg.JWT.Issuer,
		Audience:       cfg.JWT.Audience,
		AccessTTL:      cfg.AccessTTL(),
		PrivateKeyPath: cfg.JWT.PrivateKey,
		PublicKeyPath:  cfg.JWT.PublicKey,
	})
	if err != nil {
		log.Fatal("loading jwt keys", logger.Err(err))
	}

	verifier, err := google.New(google.Options{
		Audience:            cfg.Google.ClientID,
		HostedDomain:        cfg.Google.HostedDomain,
		JWKSURL:             cfg.Google.JWKSURL,
		PinnedPublicKeyPath: cfg.Google.PinnedPublicKey,
	})
	if err != nil {
		log.Fatal("building google verifier", logger.Err(err))
	}

	sessions := session.NewManager(c, cfg.Auth.Session.CookieName, cfg.SessionTTL(), cfg.Auth.Session.Secure)

	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From,
			cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.TLS)
	}

	// ─── Router ───
	h := router.New(router.Deps{
		Auth: &auth.Controller{
			Users:            st.Users(),
			Verifier:         verifier,
			Codec:            codec,
			Sessions:         sessions,
			IsBootstrapAdmin: cfg.IsBootstrapAdmin,
		},
		Admin:      &admin.Controller{Users: st.Users()},
		Events:     &events.Controller{Events: st.Events()},
		Execs:      &execs.Controller{Execs: st.Execs()},
		Products:   &products.Controller{Products: st.Products()},
		Roboticon:  &roboticon.Controller{Challenges: st.Challenges()},
		Newsletter: &newsletter.Controller{Subscribers: st.Subscribers(), Sender: sender},

		Deserialize: middlewares.Deserialize(st.Users(), sessions, codec),
		LoginLimit:  loginLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", logger.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown not clean", logger.Err(err))
	}
}

func parseLifetime(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
