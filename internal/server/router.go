package server

import (
	"workflo/internal/handler"
	"workflo/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers bundles everything the router exposes.
type Handlers struct {
	Users        *handler.UserHandler
	Boards       *handler.BoardHandler
	Contributors *handler.ContributorHandler
	Invites      *handler.InviteHandler
	Tasks        *handler.TaskHandler
	Health       *handler.HealthHandler
}

type Router struct {
	Engine *gin.Engine
	api    *gin.RouterGroup
	auth   gin.HandlerFunc
}

func NewRouter(logger *zap.Logger, allowedOrigins []string, tokens middleware.TokenParser) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware(allowedOrigins))
	engine.Use(middleware.LoggerMiddleware(logger))
	engine.Use(gin.Recovery())

	return &Router{
		Engine: engine,
		api:    engine.Group("/api"),
		auth:   middleware.JWTAuthMiddleware(tokens),
	}
}

// Register mounts every route group.
func (r *Router) Register(h Handlers) {
	if h.Health != nil {
		r.RegisterHealthRoutes(h.Health)
	}
	r.RegisterUserRoutes(h.Users)
	r.RegisterBoardRoutes(h.Boards)
	r.RegisterContributorRoutes(h.Contributors)
	r.RegisterInviteRoutes(h.Invites)
	r.RegisterTaskRoutes(h.Tasks)
	r.RegisterSwaggerRoutes()
}

func (r *Router) RegisterHealthRoutes(h *handler.HealthHandler) {
	r.api.GET("/health", h.Check)
}

func (r *Router) RegisterUserRoutes(h *handler.UserHandler) {
	public := r.api.Group("/auth")
	{
		public.POST("/signup", h.SignUp)
		public.POST("/signin", h.SignIn)
		public.POST("/signout", h.SignOut)
	}

	r.api.GET("/auth/me", r.auth, h.Me)

	users := r.api.Group("/user", r.auth)
	{
		users.GET("/me", h.Me)
		users.POST("/update/:id", h.Update)
	}
}

func (r *Router) RegisterBoardRoutes(h *handler.BoardHandler) {
	boards := r.api.Group("/board", r.auth)
	{
		boards.POST("/create", h.Create)
		boards.GET("/fetch", h.GetAll)
		boards.GET("/fetch/:id", h.GetByID)
		boards.POST("/update/:id", h.Update)
		boards.POST("/trash/:id", h.Trash)
		boards.POST("/restore/:id", h.Restore)
		boards.DELETE("/delete/:id", h.Delete)
	}
}

func (r *Router) RegisterContributorRoutes(h *handler.ContributorHandler) {
	contributors := r.api.Group("/contributor", r.auth)
	{
		contributors.GET("/fetch", h.Search)
		contributors.GET("/fetch/:board_id", h.GetByBoard)
		contributors.POST("/create", h.Create)
		contributors.POST("/update/:id", h.Update)
		contributors.DELETE("/delete/:id", h.Delete)
		contributors.POST("/accept/:id", h.Accept)
		contributors.POST("/decline/:id", h.Decline)
	}
}

// RegisterInviteRoutes: статические пути регистрируются до /:boardId
func (r *Router) RegisterInviteRoutes(h *handler.InviteHandler) {
	invites := r.api.Group("/invite", r.auth)
	{
		invites.POST("/decode", h.Decode)
		invites.POST("/decline", h.Decline)
		invites.POST("/accept/:boardId/user/:userId", h.Accept)
		invites.POST("/:boardId", h.Issue)
	}
}

func (r *Router) RegisterTaskRoutes(h *handler.TaskHandler) {
	tasks := r.api.Group("/task", r.auth)
	{
		tasks.GET("/fetch/board/:board_id", h.GetByBoard)
		tasks.GET("/fetch/:id", h.GetByID)
		tasks.POST("/create", h.Create)
		tasks.POST("/update/:id", h.Update)
		tasks.DELETE("/delete/:id", h.Delete)
	}
}

func (r *Router) RegisterSwaggerRoutes() {
	r.Engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
