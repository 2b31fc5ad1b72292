package main

import (
	"log"
	"os"
	"strconv"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/lock"
	"github.com/skairipa08/FundEd2/payments"
	"github.com/skairipa08/FundEd2/routes"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
)

// @title FundEd Backend API
// @version 1.0
// @description Donation platform connecting verified students to donors
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	provider := payments.NewStripeProvider(
		os.Getenv("STRIPE_API_KEY"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
	)

	var locks lock.KeyLocker = lock.NoopLocker{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		locks = lock.NewRedisLocker(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		utils.LogInfo("Redis idempotency lock enabled")
	}

	r := routes.SetupRouter(provider, locks)

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
