package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/config"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// auditPurgeInterval is how often expired audit entries are swept. Postgres
// has no TTL indexes, so the retention window is enforced here (plus a
// retention predicate on reads).
const auditPurgeInterval = time.Hour

type App struct {
	cfg    config.Config
	log    *logrus.Entry
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine

	janitorStop chan struct{}
	janitorDone chan struct{}
}

func New(cfg config.Config, log *logrus.Entry) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if err := runMigrations(cfg.PG.DSN, "./migrations"); err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, err
	}

	a.router = newRouter(cfg, log, a.db, a.redis)
	a.startAuditJanitor()
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.janitorStop != nil {
		close(a.janitorStop)
		<-a.janitorDone
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

// startAuditJanitor sweeps expired audit entries hourly until Close.
func (a *App) startAuditJanitor() {
	a.janitorStop = make(chan struct{})
	a.janitorDone = make(chan struct{})
	audits := repo.NewPGAuditRepo(a.db)
	retention := a.cfg.Audit.Retention.Duration()

	go func() {
		defer close(a.janitorDone)
		ticker := time.NewTicker(auditPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.janitorStop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				n, err := audits.DeleteOlderThan(ctx, time.Now().Add(-retention))
				cancel()
				if err != nil {
					a.log.WithError(err).Warn("audit purge failed")
					continue
				}
				if n > 0 {
					a.log.WithField("purged", n).Info("expired audit entries removed")
				}
			}
		}
	}()
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, log *logrus.Entry, db *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, log, db, rdb)
	return r
}
