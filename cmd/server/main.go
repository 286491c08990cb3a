package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"fairtable-server/internal/app"
	"fairtable-server/internal/config"
	"fairtable-server/internal/jwt"
	"fairtable-server/internal/mux"
	"fairtable-server/pkg/db"
	"fairtable-server/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")
var memory = flag.Bool("memory", false, "keep rounds in memory instead of PostgreSQL")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	if err := jwt.LoadKeys(cfg.JWT.PublicKey, cfg.JWT.PrivateKey); err != nil {
		logrus.WithError(err).Fatal("could not load JWT keys")
	}

	st, err := app.OpenStore(cfg, *memory)
	if err != nil {
		logrus.WithError(err).Fatal("could not open store")
	}

	// run the db migrations
	if pg, ok := st.(*store.Postgres); ok {
		if err := db.Migrate(pg.DB(), cfg.MigrationsPath); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}
	}

	a := app.New(cfg, st, quartz.NewReal())
	a.PitBoss.StartShift()
	defer a.PitBoss.EndShift()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(cfg, c.Handler(mux.NewMux(Version, a.PitBoss, a.Verifier))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(cfg config.Config, next http.Handler) http.Handler {
	if cfg.Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
