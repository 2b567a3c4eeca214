package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/urfave/cli/v2"

	"github.com/samiksha1911888/slot-swapper/internal/config"
	"github.com/samiksha1911888/slot-swapper/internal/db"
	"github.com/samiksha1911888/slot-swapper/internal/services/auth"
	"github.com/samiksha1911888/slot-swapper/internal/services/event"
	"github.com/samiksha1911888/slot-swapper/internal/services/swap"
)

func main() {
	app := &cli.App{
		Name:  "slot-swapper",
		Usage: "API обмена слотами календаря",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// serveCommand запускает HTTP сервер
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Запустить API сервер",
		Action: func(c *cli.Context) error {
			cfg := config.LoadConfig()

			if err := db.InitDB(cfg); err != nil {
				log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
			}
			defer db.CloseDB()

			if err := db.InitSchema(); err != nil {
				log.Fatalf("❌ Ошибка при инициализации схемы: %v", err)
			}

			app := fiber.New(fiber.Config{
				AppName:      "Slot Swapper API",
				ErrorHandler: errorHandler,
			})

			app.Use(recover.New())
			app.Use(logger.New())
			app.Use(cors.New(cors.Config{
				AllowOrigins:     []string{"*"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
				AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowCredentials: false,
			}))

			// Создаём сервисы
			authService := auth.NewAuthService(cfg)
			eventService := event.NewEventService(cfg)
			swapService := swap.NewSwapService(cfg)

			// Регистрируем маршруты
			authService.SetupRoutes(app)
			eventService.SetupRoutes(app)
			swapService.SetupRoutes(app)

			app.Get("/", func(c fiber.Ctx) error {
				return c.JSON(fiber.Map{"ok": true})
			})

			log.Printf("✅ Slot Swapper API запущен на порту %s", cfg.Port)
			return app.Listen(":" + cfg.Port)
		},
	}
}

// migrateCommand применяет схему базы данных и выходит
func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Применить схему базы данных",
		Action: func(c *cli.Context) error {
			cfg := config.LoadConfig()

			if err := db.InitDB(cfg); err != nil {
				return err
			}
			defer db.CloseDB()

			return db.InitSchema()
		},
	}
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
