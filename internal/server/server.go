package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/ornastudio/ornament-backend/internal/ai"
	"github.com/ornastudio/ornament-backend/internal/config"
	"github.com/ornastudio/ornament-backend/internal/handler"
	appmw "github.com/ornastudio/ornament-backend/internal/middleware"
	"github.com/ornastudio/ornament-backend/internal/prompt"
	"github.com/ornastudio/ornament-backend/internal/repository"
	"github.com/ornastudio/ornament-backend/internal/service"
	"github.com/ornastudio/ornament-backend/internal/storage"
)

type Server struct {
	e              *echo.Echo
	promptRepo     repository.PromptTemplateRepository
	generationRepo repository.GenerationRepository
	projectRepo    repository.ProjectRepository
	collectionRepo repository.CollectionRepository
}

func New(db *gorm.DB, cfg *config.Config, backend ai.Backend, store storage.Uploader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	promptRepo := repository.NewPromptTemplateRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	resolver := prompt.NewResolver(promptRepo)
	lineageSvc := service.NewLineageService(generationRepo, collectionRepo)
	generationSvc := service.NewGenerationService(resolver, backend, store, lineageSvc, cfg.ImageFallbackEnabled)
	projectSvc := service.NewProjectService(projectRepo)
	collectionSvc := service.NewCollectionService(collectionRepo, projectSvc, resolver, backend, store, lineageSvc)
	promptSvc := service.NewPromptService(promptRepo)

	generationHandler := handler.NewGenerationHandler(generationSvc, lineageSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	collectionHandler := handler.NewCollectionHandler(collectionSvc, lineageSvc)
	promptHandler := handler.NewPromptHandler(promptSvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID)
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api", authMw.RequireAuth)

	api.POST("/images/white-background", generationHandler.WhiteBackground)
	api.POST("/images/change-background", generationHandler.ChangeBackground)
	api.POST("/images/model-with-ornament", generationHandler.ModelWithOrnament)
	api.POST("/images/real-model-with-ornament", generationHandler.RealModelWithOrnament)
	api.POST("/images/campaign-shot", generationHandler.CampaignShotAdvanced)
	api.POST("/images/regenerate", generationHandler.Regenerate)
	api.GET("/images", generationHandler.ListMine)
	api.GET("/history/recent", generationHandler.RecentActivity)

	api.POST("/projects", projectHandler.Create)
	api.GET("/projects", projectHandler.ListMine)
	api.GET("/projects/:id", projectHandler.Get)
	api.POST("/projects/:id/members", projectHandler.AddMember)
	api.PUT("/projects/:id/members/role", projectHandler.UpdateMemberRole)
	api.DELETE("/projects/:id/members/:memberId", projectHandler.RemoveMember)

	api.POST("/collections", collectionHandler.Create)
	api.GET("/collections", collectionHandler.ListMine)
	api.GET("/collections/:id", collectionHandler.Get)
	api.POST("/collections/:id/products", collectionHandler.UploadProduct)
	api.POST("/collections/:id/regenerate", collectionHandler.RegenerateProduct)
	api.GET("/collections/:id/history", collectionHandler.History)

	api.GET("/prompts", promptHandler.List)
	api.GET("/prompts/:key", promptHandler.Get)
	api.POST("/prompts", promptHandler.Create)
	api.PUT("/prompts/:key", promptHandler.Update)
	api.DELETE("/prompts/:key", promptHandler.Delete)

	return &Server{
		e:              e,
		promptRepo:     promptRepo,
		generationRepo: generationRepo,
		projectRepo:    projectRepo,
		collectionRepo: collectionRepo,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	s.promptRepo.SetDB(db)
	s.generationRepo.SetDB(db)
	s.projectRepo.SetDB(db)
	s.collectionRepo.SetDB(db)
}
