// Package main BookGalaxy API.
//
// @title           BookGalaxy API
// @version         1.0
// @description     Online bookstore: catalog, cart, checkout with claim codes, in-store pickup, reviews.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookgalaxy/app/echoServer"
	announcementctrl "bookgalaxy/app/echoServer/controller/announcement"
	authctrl "bookgalaxy/app/echoServer/controller/auth"
	bookctrl "bookgalaxy/app/echoServer/controller/book"
	bookmarkctrl "bookgalaxy/app/echoServer/controller/bookmark"
	cartctrl "bookgalaxy/app/echoServer/controller/cart"
	fulfillmentctrl "bookgalaxy/app/echoServer/controller/fulfillment"
	memberctrl "bookgalaxy/app/echoServer/controller/member"
	orderctrl "bookgalaxy/app/echoServer/controller/order"
	reviewctrl "bookgalaxy/app/echoServer/controller/review"
	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/validation"
	"bookgalaxy/config"
	announcementrepo "bookgalaxy/repository/announcement"
	authrepo "bookgalaxy/repository/auth"
	bookrepo "bookgalaxy/repository/book"
	bookmarkrepo "bookgalaxy/repository/bookmark"
	cartrepo "bookgalaxy/repository/cart"
	fulfillmentrepo "bookgalaxy/repository/fulfillment"
	idemrepo "bookgalaxy/repository/idempotency"
	mailerrepo "bookgalaxy/repository/mailer"
	orderrepo "bookgalaxy/repository/order"
	reviewrepo "bookgalaxy/repository/review"
	userrepo "bookgalaxy/repository/user"
	announcementsvc "bookgalaxy/service/announcement"
	authsvc "bookgalaxy/service/auth"
	booksvc "bookgalaxy/service/book"
	bookmarksvc "bookgalaxy/service/bookmark"
	cartsvc "bookgalaxy/service/cart"
	fulfillmentsvc "bookgalaxy/service/fulfillment"
	membersvc "bookgalaxy/service/member"
	ordersvc "bookgalaxy/service/order"
	reviewsvc "bookgalaxy/service/review"
	"bookgalaxy/util/database"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	idem, closeIdem := idempotencyStore(ctx, cfg.RedisURL, log)
	defer closeIdem()
	mailer := mailSender(cfg, log)
	policy := cfg.DiscountPolicy()
	jwtCfg := cfg.JWT()

	// repos
	ar := authrepo.New(db)
	br := bookrepo.New(db)
	cr := cartrepo.New(db)
	or := orderrepo.New(db)
	fr := fulfillmentrepo.New(db)
	rr := reviewrepo.New(db)
	bmr := bookmarkrepo.New(db)
	anr := announcementrepo.New(db)
	ur := userrepo.New(db)

	// services
	as := authsvc.New(ar, jwtCfg)
	bs := booksvc.New(br)
	cs := cartsvc.New(cr, policy)
	ors := ordersvc.New(db, or, idem, mailer, policy, log)
	fs := fulfillmentsvc.New(db, fr, log)
	rs := reviewsvc.New(rr)
	bms := bookmarksvc.New(bmr)
	ans := announcementsvc.New(anr)
	ms := membersvc.New(ur)

	// controllers
	v := validation.New()
	c := echoServer.C{
		Auth:         &authctrl.Controller{Svc: as, V: v, Log: log},
		Book:         &bookctrl.Controller{Svc: bs, V: v, Log: log},
		Cart:         &cartctrl.Controller{Svc: cs, V: v, Log: log},
		Order:        &orderctrl.Controller{Svc: ors, Log: log},
		Fulfillment:  &fulfillmentctrl.Controller{Svc: fs, V: v, Log: log},
		Review:       &reviewctrl.Controller{Svc: rs, V: v, Log: log},
		Bookmark:     &bookmarkctrl.Controller{Svc: bms, Log: log},
		Announcement: &announcementctrl.Controller{Svc: ans, V: v, Log: log},
		Member:       &memberctrl.Controller{Svc: ms, Log: log},
		JWT:          jwtCfg,
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = v
	e.HTTPErrorHandler = httperr.Handler(log)
	echoServer.RegisterMiddlewares(e, log)

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "degraded",
				"message": "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, c)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		log.Info("starting server", "port", port, "env", cfg.Env)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}

// idempotencyStore uses Redis when REDIS_URL is set and reachable. Without
// it checkout still works, just without replay protection.
func idempotencyStore(ctx context.Context, url string, log *slog.Logger) (idemrepo.Store, func()) {
	if url == "" {
		log.Info("REDIS_URL not set, checkout idempotency disabled")
		return idemrepo.NewNoop(), func() {}
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("bad REDIS_URL, checkout idempotency disabled", "err", err)
		return idemrepo.NewNoop(), func() {}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, checkout idempotency disabled", "err", err)
		_ = rdb.Close()
		return idemrepo.NewNoop(), func() {}
	}
	return idemrepo.NewRedis(rdb), func() { _ = rdb.Close() }
}

func mailSender(cfg config.App, log *slog.Logger) mailerrepo.Sender {
	if cfg.MailerURL == "" {
		return mailerrepo.NewLog(log)
	}
	return mailerrepo.NewHTTP(cfg.MailerURL, cfg.MailerAPIKey, cfg.MailerFrom)
}
