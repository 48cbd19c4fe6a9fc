package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "collabtask/docs"
	"collabtask/internal/auth"
	"collabtask/internal/config"
	"collabtask/internal/handler"
	"collabtask/internal/middleware"
	"collabtask/internal/migration"
	"collabtask/internal/repository"
	"collabtask/internal/repository/memory"
	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Repositories is the storage backing the services.
type Repositories struct {
	Users    service.UserRepository
	Projects service.ProjectRepository
	Tasks    service.TaskRepository
	Comments service.CommentRepository
	Subtasks service.SubtaskRepository
}

var (
	_ service.UserRepository    = (*repository.UserRepository)(nil)
	_ service.ProjectRepository = (*repository.ProjectRepository)(nil)
	_ service.TaskRepository    = (*repository.TaskRepository)(nil)
	_ service.CommentRepository = (*repository.CommentRepository)(nil)
	_ service.SubtaskRepository = (*repository.SubtaskRepository)(nil)

	_ service.UserRepository    = (*memory.UserRepository)(nil)
	_ service.ProjectRepository = (*memory.ProjectRepository)(nil)
	_ service.TaskRepository    = (*memory.TaskRepository)(nil)
	_ service.CommentRepository = (*memory.CommentRepository)(nil)
	_ service.SubtaskRepository = (*memory.SubtaskRepository)(nil)
)

func PostgresRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    repository.NewUserRepository(db),
		Projects: repository.NewProjectRepository(db),
		Tasks:    repository.NewTaskRepository(db),
		Comments: repository.NewCommentRepository(db),
		Subtasks: repository.NewSubtaskRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:    store.Users(),
		Projects: store.Projects(),
		Tasks:    store.Tasks(),
		Comments: store.Comments(),
		Subtasks: store.Subtasks(),
	}
}

type Server struct {
	Engine *gin.Engine
	// DB is nil when running on the in-memory store.
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Logger
}

func Init(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	if cfg.UsesDefaultJWTSecret() {
		log.Warn("⚠️  JWT_SECRET is not set, tokens are signed with the development default")
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		log.Warnf("⚠️  Unknown GIN_MODE %q, using %s", cfg.GinMode, gin.Mode())
	}

	var (
		repos Repositories
		db    *gorm.DB
	)
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		if cfg.AutoMigrate {
			if err := migration.Up(cfg.MigrateURL(), log); err != nil {
				return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
			}
		}
		var err error
		db, err = repository.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("❌ %w", err)
		}
		log.Info("✅ Connected to database")
		repos = PostgresRepositories(db)
	case config.StorageDriverMemory:
		log.Warn("⚠️  Using in-memory storage, data is lost on restart")
		repos = MemoryRepositories(memory.New())
	default:
		return nil, fmt.Errorf("❌ unknown storage driver %q", cfg.StorageDriver)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	return &Server{
		Engine: NewEngine(repos, tokens, cfg.AuthRequired, log),
		DB:     db,
		Config: cfg,
		Log:    log,
	}, nil
}

// NewEngine wires services and handlers onto a gin engine.
func NewEngine(repos Repositories, tokens *auth.TokenManager, authRequired bool, log logrus.FieldLogger) *gin.Engine {
	identity := service.NewIdentityService(repos.Users, tokens, log)
	projects := service.NewProjectService(repos.Projects, repos.Users, log)
	tasks := service.NewTaskService(repos.Tasks, repos.Projects, repos.Users, repos.Comments, repos.Subtasks, log)
	queries := service.NewQueryService(repos.Projects, repos.Tasks, repos.Users, repos.Comments)

	userHandler := handler.NewUserHandler(identity, log)
	projectHandler := handler.NewProjectHandler(projects, queries, log)
	taskHandler := handler.NewTaskHandler(tasks, queries, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/signup", userHandler.Signup)
	r.POST("/login", userHandler.Login)

	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens, authRequired))
	{
		authorized.GET("/users", userHandler.List)
		authorized.PUT("/users/:userID", userHandler.UpdateProfile)

		authorized.GET("/get_projects", projectHandler.GetProjects)
		authorized.POST("/create_project", projectHandler.Create)
		authorized.PUT("/update_project", projectHandler.Update)
		authorized.POST("/projects/:projectID/members", projectHandler.AddMember)
		authorized.DELETE("/projects/:projectID/members/:userID", projectHandler.RemoveMember)
		authorized.GET("/get_project_overview", projectHandler.Overview)

		authorized.GET("/get_tasks", taskHandler.GetTasks)
		authorized.POST("/create_task", taskHandler.Create)
		authorized.PUT("/update_task/:taskID", taskHandler.Update)
		authorized.POST("/tasks/:taskID/move", taskHandler.Move)
		authorized.DELETE("/delete_task/:taskID", taskHandler.Delete)

		authorized.POST("/create_subtask", taskHandler.CreateSubtask)
		authorized.GET("/get_subtasks/:taskID", taskHandler.GetSubtasks)
		authorized.PUT("/update_subtask/:subtaskID", taskHandler.UpdateSubtask)
		authorized.DELETE("/delete_subtask/:subtaskID", taskHandler.DeleteSubtask)
		authorized.GET("/tasks/:taskID/tasklist", taskHandler.GetSubtasks)
		authorized.POST("/tasks/:taskID/tasklist", taskHandler.CreateSubtask)

		authorized.POST("/add_comment", taskHandler.AddComment)
		authorized.GET("/get_comments", taskHandler.GetComments)
	}

	return r
}

// Handler is the engine wrapped with the configured CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(s.Engine)
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("❌ failed to listen: %w", err)
	case <-quit:
	}
	s.Log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("❌ server forced to shutdown: %w", err)
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	s.Log.Info("✅ Server exited properly")
	return nil
}
