package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/config"
	"github.com/bloodpoint/donation-service/internal/database"
	"github.com/bloodpoint/donation-service/internal/handler"
	"github.com/bloodpoint/donation-service/internal/middleware"
	"github.com/bloodpoint/donation-service/internal/queue"
	"github.com/bloodpoint/donation-service/internal/repository"
	"github.com/bloodpoint/donation-service/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	donors := repository.NewDonorRepo(db)
	tokens := repository.NewTokenRepo(db)
	hospitals := repository.NewHospitalRepo(db)
	nurses := repository.NewNurseRepo(db)
	donations := repository.NewDonationRepo(db)
	questionnaires := repository.NewQuestionnaireRepo(db)

	e := echo.New()

	// Redis backs rate limiting and the public response cache. A nil
	// client disables both and the service runs without them.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	var browseMW []echo.MiddlewareFunc
	if rdb != nil {
		browseMW = append(browseMW, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, donors, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(hospitals), handler.NewConfirmHandler(donations), browseMW...)
	router.RegisterDonor(e,
		handler.NewProfileHandler(donors),
		handler.NewDonationHandler(donations, hospitals, nurses),
		handler.NewQuestionnaireHandler(questionnaires),
		cfg.JWTSecret,
	)

	// Background consumer appends confirmed donations to logs/donation.log.
	go func() {
		if err := queue.StartDonationConsumer(); err != nil {
			log.Printf("donation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
