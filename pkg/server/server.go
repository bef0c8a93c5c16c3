package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/auth"
	"github.com/insomnia-fuel/cafe-api/pkg/checkout"
	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/insomnia-fuel/cafe-api/pkg/media"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/insomnia-fuel/cafe-api/pkg/payment"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// CheckoutService is the reconciliation coordinator as the handlers see it.
type CheckoutService interface {
	CreateSession(ctx context.Context, principal *auth.Principal) (*payment.Session, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	ConfirmSession(ctx context.Context, sessionID string) (*checkout.ConfirmResult, error)
}

type OrderStore interface {
	ListPaginated(ctx context.Context, page, limit int64) (*repository.OrderPage, error)
	ListByUser(ctx context.Context, uid string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, paymentStatus models.PaymentStatus) error
}

type CartStore interface {
	GetOrCreate(ctx context.Context, uid string) (*models.Cart, error)
	UpsertItem(ctx context.Context, uid string, item models.CartItem) (*models.Cart, error)
	RemoveItem(ctx context.Context, uid, menuItemID string) (*models.Cart, error)
	Clear(ctx context.Context, uid string) (*models.Cart, error)
}

type UserStore interface {
	Create(ctx context.Context, params repository.CreateUserParams) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	ListPaginated(ctx context.Context, page, limit int64) (*repository.UserPage, error)
	Delete(ctx context.Context, uid string) error
}

type MenuStore interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (*models.MenuItem, error)
	Create(ctx context.Context, input repository.MenuItemInput) (*models.MenuItem, error)
	Update(ctx context.Context, id string, input repository.MenuItemInput) (*models.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

// MenuCache is the optional cache-aside layer over the menu listing.
type MenuCache interface {
	GetMenuCache(ctx context.Context) ([]models.MenuItem, error)
	CacheMenu(ctx context.Context, items []models.MenuItem) error
	InvalidateMenu(ctx context.Context) error
}

type ContactStore interface {
	Create(ctx context.Context, input repository.ContactInput) (*models.ContactMessage, error)
	ListPaginated(ctx context.Context, page, limit int64) (*repository.ContactPage, error)
	MarkHandled(ctx context.Context, id string, handled bool) error
}

type GalleryStore interface {
	List(ctx context.Context) ([]models.GalleryImage, error)
	Get(ctx context.Context, id string) (*models.GalleryImage, error)
	Create(ctx context.Context, input repository.GalleryInput) (*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

// MediaHost signs uploads and destroys assets on the external image host.
type MediaHost interface {
	Configured() bool
	SignUpload() (*media.UploadSignature, error)
	Destroy(ctx context.Context, publicID string) error
}

type Deps struct {
	Verifier auth.Verifier
	Checkout CheckoutService
	Orders   OrderStore
	Carts    CartStore
	Users    UserStore
	Menu     MenuStore
	Contact  ContactStore
	Gallery  GalleryStore
	Cache    MenuCache
	Media    MediaHost
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	deps   Deps
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	s := &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	co := api.Group("/checkout")
	{
		co.POST("/create-session", s.authRequired(), s.createCheckoutSession)
		co.POST("/webhook", s.stripeWebhook)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", s.authRequired(), s.adminOnly(), s.listOrders)
		orders.GET("/my", s.authRequired(), s.myOrders)
		orders.GET("/session/:sessionId", s.confirmSession)
		orders.PUT("/:id", s.authRequired(), s.adminOnly(), s.updateOrderStatus)
		orders.PUT("/:id/payment", s.authRequired(), s.adminOnly(), s.updateOrderPaymentStatus)
	}

	menu := api.Group("/menu")
	{
		menu.GET("", s.listMenu)
		menu.GET("/:id", s.getMenuItem)
		menu.POST("", s.authRequired(), s.adminOnly(), s.createMenuItem)
		menu.PUT("/:id", s.authRequired(), s.adminOnly(), s.updateMenuItem)
		menu.DELETE("/:id", s.authRequired(), s.adminOnly(), s.deleteMenuItem)
	}

	cart := api.Group("/cart", s.authRequired())
	{
		cart.GET("", s.getCart)
		cart.POST("", s.upsertCartItem)
		cart.DELETE("", s.clearCart)
		cart.DELETE("/:menuItemId", s.removeCartItem)
	}

	users := api.Group("/users")
	{
		users.POST("/sync", s.authRequired(), s.syncUser)
		users.GET("/me", s.authRequired(), s.getMe)
		users.GET("", s.authRequired(), s.adminOnly(), s.listUsers)
		users.DELETE("/:uid", s.authRequired(), s.adminOnly(), s.deleteUser)
	}

	contact := api.Group("/contact")
	{
		contact.POST("", s.optionalAuth(), s.createContactMessage)
		contact.GET("", s.authRequired(), s.adminOnly(), s.listContactMessages)
		contact.PATCH("/:id", s.authRequired(), s.adminOnly(), s.markContactHandled)
	}

	gallery := api.Group("/gallery")
	{
		gallery.GET("", s.listGallery)
		gallery.POST("/signature", s.authRequired(), s.adminOnly(), s.galleryUploadSignature)
		gallery.POST("", s.authRequired(), s.adminOnly(), s.createGalleryImage)
		gallery.DELETE("/:id", s.authRequired(), s.adminOnly(), s.deleteGalleryImage)
	}

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("API server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
