package main

import (
	"github.com/Piyush5784/maa-anapurna-trust-api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Maa Anapurna Trust API
// @version 1.0
// @description Backend for the trust's public site and admin console
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.JWTService{},
		&services.LogService{},
		&services.MonitoringService{},

		&services.RateLimitService{},
		&services.AuthService{},
		&services.StoryService{},
		&services.ContactService{},
		&services.AnalyticsService{},
		&services.PaymentService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
