package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"miturno/internal/booking"
	"miturno/internal/cache"
	"miturno/internal/config"
	"miturno/internal/mailer"
	"miturno/internal/media"
)

type App struct {
	DB       *pgxpool.Pool
	Log      *zap.Logger
	Cfg      *config.Config
	Tokens   *TokenIssuer
	Planner  *booking.Planner
	Mailer   *mailer.Mailer
	Media    media.Uploader
	Cache    cache.Cache
	Calendar *CalendarSync
	Location *time.Location
}

// New wires the application around an open pool. Optional collaborators
// fall back to inert implementations when their settings are empty.
func New(cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) *App {
	a := &App{
		DB:       pool,
		Log:      log,
		Cfg:      cfg,
		Location: cfg.Location(),
		Tokens:   NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.StaticTokenList()),
	}

	a.Planner = booking.NewPlanner(a, a, a.Location)

	var sender mailer.Sender = mailer.NewLogSender(log)
	if cfg.ResendAPIKey != "" {
		sender = mailer.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	}
	a.Mailer = mailer.New(sender, log)

	a.Media = media.Disabled{}
	if up, err := media.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder); err == nil {
		a.Media = up
	} else {
		log.Warn("Image uploads disabled", zap.Error(err))
	}

	a.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		if rc, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err == nil {
			a.Cache = rc
		} else {
			log.Warn("Redis unavailable, dashboard cache disabled", zap.Error(err))
		}
	}

	a.Calendar = NewCalendarSync(cfg, a, log)

	return a
}
