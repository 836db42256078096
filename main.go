package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Muga-ai/findahome/config"
	"github.com/Muga-ai/findahome/handlers"
	"github.com/Muga-ai/findahome/listing"
	"github.com/Muga-ai/findahome/media"
	"github.com/Muga-ai/findahome/routes"
	"github.com/Muga-ai/findahome/store"
	"github.com/Muga-ai/findahome/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.ConnectDB()
	defer config.DisconnectDB()

	utils.InitRedis()

	mediaCfg, err := media.NewConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	uploader := media.NewCloudinary(mediaCfg)

	listingCollection := os.Getenv("MONGODB_COLLECTION_LISTINGS")
	if listingCollection == "" {
		listingCollection = "listings"
	}
	userCollection := os.Getenv("MONGODB_COLLECTION_USERS")
	if userCollection == "" {
		userCollection = "users"
	}

	listingStore := store.NewMongoListingStore(config.GetCollection(listingCollection))
	svc := listing.NewService(listingStore, uploader)

	uc := handlers.NewUserController(config.GetCollection(userCollection))
	lc := handlers.NewListingController(svc)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	routes.RegisterRoutes(e, uc, lc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
