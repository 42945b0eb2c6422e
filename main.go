package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thu-HZML/SmartPaste-sub000/config"
	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/handlers"
	"github.com/thu-HZML/SmartPaste-sub000/logger"
	"github.com/thu-HZML/SmartPaste-sub000/middleware"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
	"github.com/thu-HZML/SmartPaste-sub000/services"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting SmartPaste service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open database failed: %v", err)
	}
	defer store.Close()

	if cfg.Redis.Enabled {
		if err := database.InitRedis(&cfg.Redis); err != nil {
			log.Fatalf("init redis failed: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Join(cfg.Storage.BasePath, "files"), 0o755); err != nil {
		log.Fatalf("create files dir failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(store, database.RedisClient).BuildContainer()
	serviceContainer := services.BuildContainer(&repoContainer, cfg)
	handlers.SetServices(serviceContainer)
	handlers.SetStore(store)

	serviceContainer.Retention.StartWorker(context.Background())

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	items := api.Group("/items")
	{
		items.POST("", handlers.InsertItem)
		items.POST("/text", handlers.InsertText)
		items.GET("", handlers.ListItems)
		items.GET("/latest", handlers.GetLatestItem)
		items.GET("/favorites/count", handlers.CountFavorites)
		items.POST("/search", handlers.SearchItems)
		items.POST("/clear", handlers.ClearItems)
		items.POST("/rewrite-path", handlers.RewritePathPrefix)
		items.GET("/:id", handlers.GetItem)
		items.DELETE("/:id", handlers.DeleteItem)
		items.PUT("/:id/content", handlers.UpdateItemContent)
		items.PUT("/:id/notes", handlers.UpdateItemNotes)
		items.PUT("/:id/favorite", handlers.SetItemFavorite)
		items.POST("/:id/favorite/toggle", handlers.ToggleItemFavorite)
		items.POST("/:id/top", handlers.TopItem)
		items.GET("/:id/folders", handlers.ListFoldersByItem)
		items.GET("/:id/extension", handlers.GetExtension)
		items.PUT("/:id/ocr", handlers.SetOCRText)
		items.POST("/:id/icon", handlers.GenerateIcon)
		items.POST("/:id/privacy", handlers.MarkItemPrivate)
		items.DELETE("/:id/privacy", handlers.UnmarkItemPrivate)
		items.GET("/:id/privacy", handlers.IsItemPrivate)
		items.POST("/:id/privacy/check", handlers.CheckAndMarkItem)
	}

	folders := api.Group("/folders")
	{
		folders.POST("", handlers.CreateFolder)
		folders.GET("", handlers.ListFolders)
		folders.GET("/:id", handlers.GetFolder)
		folders.PUT("/:id", handlers.RenameFolder)
		folders.DELETE("/:id", handlers.DeleteFolder)
		folders.POST("/:id/items", handlers.AddFolderItem)
		folders.DELETE("/:id/items/:item_id", handlers.RemoveFolderItem)
		folders.GET("/:id/items/count", handlers.CountFolderItems)
		folders.GET("/by-name/:name/items", handlers.ListFolderItems)
	}

	privacy := api.Group("/privacy")
	{
		privacy.GET("/items", handlers.ListPrivateItems)
		privacy.DELETE("/marks", handlers.ClearPrivateMarks)
		privacy.POST("/filters/passwords", handlers.FilterPasswords)
		privacy.POST("/filters/bank-cards", handlers.FilterBankCards)
		privacy.POST("/filters/id-numbers", handlers.FilterIDNumbers)
		privacy.POST("/filters/phone-numbers", handlers.FilterPhoneNumbers)
		privacy.POST("/auto-mark", handlers.AutoMarkPrivacy)
	}

	sync := api.Group("/sync")
	{
		sync.GET("/export", handlers.ExportSnapshot)
		sync.POST("/merge", handlers.MergeSnapshot)
		sync.POST("/export/encrypted", handlers.ExportEncryptedSnapshot)
		sync.POST("/merge/encrypted", handlers.MergeEncryptedSnapshot)
	}

	api.GET("/ocr/search", handlers.SearchByOCR)
	api.POST("/cleanup", handlers.TriggerCleanup)
	api.GET("/storage/database", handlers.GetDatabasePath)
	api.PUT("/storage/database", handlers.SwitchDatabase)
}
