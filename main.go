package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"civicworks-be/config"
	"civicworks-be/controllers"
	"civicworks-be/lifecycle"
	"civicworks-be/notify"
	"civicworks-be/routes"
	"civicworks-be/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	log.Println("MongoDB connection established successfully!")

	config.ConnectRedis()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	dataStore := store.NewMongo(db)
	if err := dataStore.EnsureIndexes(context.Background()); err != nil {
		log.Printf("Failed to ensure indexes: %v", err)
	}

	// cancelled on SIGINT/SIGTERM so the emitter drains before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emitter := notify.NewEmitter(dataStore, logger, 256)
	emitter.Start(ctx)

	engine := lifecycle.New(dataStore, emitter, logger)
	controllers.Init(engine, dataStore)

	r := gin.Default()

	routes.AuthRoutes(r)
	routes.IssueRoutes(r)
	routes.WorkerRoutes(r)
	routes.ImpactRoutes(r)
	routes.NotificationRoutes(r)
	routes.AdminRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	go func() {
		if err := r.Run(":8080"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down, draining pending notifications")
	emitter.Wait()
}
