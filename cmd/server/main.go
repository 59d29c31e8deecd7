package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/config"
	"github.com/BenefitMap/BenefitMap/internal/database"
	"github.com/BenefitMap/BenefitMap/internal/handler"
	"github.com/BenefitMap/BenefitMap/internal/mail"
	"github.com/BenefitMap/BenefitMap/internal/middleware"
	"github.com/BenefitMap/BenefitMap/internal/oauth/google"
	"github.com/BenefitMap/BenefitMap/internal/queue"
	"github.com/BenefitMap/BenefitMap/internal/repository"
	"github.com/BenefitMap/BenefitMap/internal/router"
)

func main() {
	// .env is a development convenience; in production everything comes
	// from real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	tags := repository.NewTagRepo(db)
	benefits := repository.NewBenefitRepo(db)
	events := repository.NewCalendarRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret, cfg.AccessTTLSec, cfg.RefreshTTLSec)
	svc := auth.NewService(users, tokens, codec)
	goog := google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	// The mail consumer runs inside the server process. Without SMTP
	// settings it degrades to logging rendered mail, which is what you
	// want on a laptop.
	var sender mail.Sender = &mail.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom, cfg.SMTPUser, cfg.SMTPPass)
	}
	go func() {
		if err := queue.StartMailConsumer(sender); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, svc, goog),
		User:       handler.NewUserHandler(cfg, svc, users, profiles, tags),
		Onboarding: handler.NewOnboardingHandler(users, profiles, tags),
		Catalog:    handler.NewCatalogHandler(benefits),
		Calendar:   handler.NewCalendarHandler(events),
		Mail:       handler.NewMailHandler(users),
		Admin:      handler.NewAdminHandler(users, tokens),
	}
	router.Register(e, h, middleware.Authenticate(codec, users), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
