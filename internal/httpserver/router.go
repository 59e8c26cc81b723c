package httpserver

import (
	"context"
	"log"

	"nexuscart/internal/domain"
	cartsvc "nexuscart/internal/service/cart"
	catalogsvc "nexuscart/internal/service/catalog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Service interfaces consumed by the handlers. Defined here so tests can
// substitute stubs.

type AuthService interface {
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

type CatalogService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in catalogsvc.WriteInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalogsvc.WriteInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	Summarize(ctx context.Context, ownerID string) (*cartsvc.Summary, error)
	Add(ctx context.Context, ownerID, productID string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, ownerID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) (*domain.Cart, error)
	Sync(ctx context.Context, ownerID string, items []domain.CartItem, version int64) (*domain.Cart, error)
}

type OrderService interface {
	Checkout(ctx context.Context, ownerID, idempotencyKey string) (*domain.Order, error)
	Get(ctx context.Context, requester *domain.User, id string) (*domain.Order, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

// Deps carries everything the router needs.
type Deps struct {
	AuthSvc        AuthService
	CatalogSvc     CatalogService
	CartSvc        CartService
	OrderSvc       OrderService
	Redis          *redis.Client
	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = deps.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Idempotency-Key")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.Use(sessionMiddleware(deps.AuthSvc))

	router.POST("/signup", signupHandler(deps.AuthSvc))
	router.POST("/login", loginHandler(deps.AuthSvc))

	router.GET("/products", listProductsHandler(deps.CatalogSvc))
	router.GET("/products/:id", getProductHandler(deps.CatalogSvc))

	me := router.Group("/me", requireUser())
	{
		me.GET("", meHandler())
		me.POST("/logout", logoutHandler(deps.AuthSvc))

		me.GET("/cart", getCartHandler(deps.CartSvc))
		me.PUT("/cart", syncCartHandler(deps.CartSvc))
		me.DELETE("/cart", clearCartHandler(deps.CartSvc))
		me.POST("/cart/items", addCartItemHandler(deps.CartSvc))
		me.PATCH("/cart/items/:productId", setCartQuantityHandler(deps.CartSvc))
		me.DELETE("/cart/items/:productId", removeCartItemHandler(deps.CartSvc))
		me.GET("/cart/watch", watchCartHandler(deps.Redis, logger))

		me.POST("/orders", checkoutHandler(deps.OrderSvc))
		me.GET("/orders", listMyOrdersHandler(deps.OrderSvc))
		me.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	}

	admin := router.Group("/admin", requireAdmin())
	{
		admin.GET("/orders", listAllOrdersHandler(deps.OrderSvc))
		admin.PATCH("/orders/:id/status", updateOrderStatusHandler(deps.OrderSvc))
		admin.POST("/products", createProductHandler(deps.CatalogSvc))
		admin.PUT("/products/:id", updateProductHandler(deps.CatalogSvc))
		admin.DELETE("/products/:id", deleteProductHandler(deps.CatalogSvc))
	}

	return router, nil
}
