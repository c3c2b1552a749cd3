package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/mangabrew/internal/config"
	"github.com/example/mangabrew/internal/database"
	"github.com/example/mangabrew/internal/handlers"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/routes"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	var store session.Store
	switch cfg.SessionBackend {
	case "memory":
		store = session.NewMemoryStore()
	default:
		client, err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client)
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Printf("SMTP_HOST not set, outgoing mail will only be logged")
	}

	app := fiber.New(fiber.Config{
		AppName:      "MangaBrew Café",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    services.MaxAvatarSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, repository.NewSet(db), routes.Dependencies{
		Config:   cfg,
		Sessions: store,
		Mailer:   mailer,
		Notifier: services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramStaffChatID),
		Storage:  services.NewDiskStorage(cfg.UploadDir),
	})

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
