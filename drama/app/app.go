package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/nezabudrama/core/bootstrap"
	"github.com/m3rciful/nezabudrama/core/logger"
	tg "github.com/m3rciful/nezabudrama/core/telegram"
	"github.com/m3rciful/nezabudrama/core/telegram/router"
	"github.com/m3rciful/nezabudrama/core/telegram/sender"
	"github.com/m3rciful/nezabudrama/core/telegram/state"
	"github.com/m3rciful/nezabudrama/drama/activity"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/dialog"
	"github.com/m3rciful/nezabudrama/drama/frontend"
	"github.com/m3rciful/nezabudrama/drama/poster"
	"github.com/m3rciful/nezabudrama/drama/session"
	"github.com/m3rciful/nezabudrama/migrations"
)

const redisPingTimeout = 5 * time.Second

// App owns the infrastructure of a running bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	redis    *redis.Client
	bot      *frontend.Bot
	notifier *frontend.Notifier
}

// Bootstrap initializes logging, the database with its migrations, the session store and the engine.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, db: res.DB, notifier: frontend.NewNotifier(cfg.Telegram.AdminIDs)}

	sessions, err := a.openSessions(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	engine, err := dialog.New(dialog.Options{
		Catalog:  catalog.NewRepository(res.DB),
		Sessions: sessions,
		Posters: poster.NewResolver(poster.Options{
			Endpoint:        cfg.Poster.Endpoint,
			AllowedPrefixes: cfg.Poster.AllowedPrefixes,
			Timeout:         cfg.Poster.Timeout,
		}),
		IsAdmin:  cfg.Telegram.IsAdmin,
		Reporter: a.notifier,
		PageSize: cfg.Catalog.PageSize,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.bot = &frontend.Bot{
		Engine:   engine,
		Activity: activity.NewRepository(res.DB),
		Reporter: a.notifier,
	}
	return a, nil
}

func (a *App) openSessions(ctx context.Context) (state.Store[*session.Session], error) {
	sc := a.cfg.Session
	if sc.Backend != SessionRedis {
		logger.Info(ctx, "session", "session.store",
			slog.String("status", "ok"),
			slog.String("backend", SessionMemory),
			slog.Duration("ttl", sc.TTL),
		)
		return state.NewMemoryStore[*session.Session](sc.TTL), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     sc.Redis.Addr,
		Password: sc.Redis.Password,
		DB:       sc.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("app: redis ping %s: %w", sc.Redis.Addr, err)
	}
	a.redis = client
	logger.Info(ctx, "session", "session.store",
		slog.String("status", "ok"),
		slog.String("backend", SessionRedis),
		slog.Duration("ttl", sc.TTL),
	)
	return state.NewRedisStore[*session.Session](client, sc.Redis.Prefix, sc.TTL), nil
}

// TelegramRunOptions assembles the routes, middlewares and lifecycle hooks of the bot.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.bot == nil {
		return tg.RunOptions{}, errors.New("app: not bootstrapped")
	}
	core := &a.cfg.Config
	reg := a.bot.Registry()

	routes := []tg.Route{router.CallbackRoute(reg)}
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       core.Telegram.IsAdmin,
		OnAdminReject: a.bot.Denied,
	})...)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{UnknownMedia: a.bot.Media})...)

	return tg.RunOptions{
		Config:            core,
		Registry:          reg,
		DispatcherOptions: sender.OptionsFromConfig(core.Sender),
		Middlewares: tg.DefaultMiddlewares(core, tg.MiddlewareOptions{
			OnLimited: a.bot.Limited,
			OnPanic:   a.bot.Panicked,
			Extra:     []tg.Middleware{{Name: "activity", Use: a.bot.RecordActivity}},
		}),
		Routes: routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.notifier.Bind(rt.Bot)
			return nil
		},
		OnStop: func(_ context.Context, _ tg.Runtime) error {
			a.notifier.Bind(nil)
			return nil
		},
	}, nil
}

// Close releases the database and the redis client.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
