package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"coursepay/internal/config"
	"coursepay/internal/handler"
	authmw "coursepay/internal/middleware"
	"coursepay/internal/service"
)

type Server struct {
	echo               *echo.Echo
	authCfg            *config.Auth
	cartHandler        *handler.CartHandler
	wishlistHandler    *handler.WishlistHandler
	checkoutHandler    *handler.CheckoutHandler
	couponHandler      *handler.CouponHandler
	transactionHandler *handler.TransactionHandler
}

func NewServer(
	authCfg *config.Auth,
	cartService service.CartService,
	wishlistService service.WishlistService,
	checkoutService service.CheckoutService,
	couponService service.CouponService,
	transactionService service.TransactionService,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:               e,
		authCfg:            authCfg,
		cartHandler:        handler.NewCartHandler(cartService),
		wishlistHandler:    handler.NewWishlistHandler(wishlistService),
		checkoutHandler:    handler.NewCheckoutHandler(checkoutService, transactionService),
		couponHandler:      handler.NewCouponHandler(couponService),
		transactionHandler: handler.NewTransactionHandler(transactionService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- gateway callbacks (no auth; verified by signature) --------
	api.POST("/payments/webhook", s.checkoutHandler.GatewayWebhook)

	auth := authmw.Auth(s.authCfg)

	// -------- cart --------
	cart := api.Group("/cart", auth)
	cart.GET("", s.cartHandler.List)
	cart.POST("", s.cartHandler.Add)
	cart.GET("/check/:courseId", s.cartHandler.Check)
	cart.GET("/count", s.cartHandler.Count)
	cart.DELETE("/:cartItemId", s.cartHandler.Remove)

	// -------- wishlist --------
	wishlist := api.Group("/wishlist", auth)
	wishlist.GET("", s.wishlistHandler.List)
	wishlist.POST("", s.wishlistHandler.Add)
	wishlist.POST("/sync", s.wishlistHandler.Sync)
	wishlist.GET("/check/:courseId", s.wishlistHandler.Check)
	wishlist.GET("/count", s.wishlistHandler.Count)
	wishlist.DELETE("/:courseId", s.wishlistHandler.Remove)

	// -------- checkout --------
	checkout := api.Group("/checkout", auth)
	checkout.POST("/snapshot", s.checkoutHandler.CreateSnapshot)
	checkout.GET("/snapshot", s.checkoutHandler.GetSnapshot)
	checkout.POST("/preview", s.checkoutHandler.Preview)
	checkout.POST("", s.checkoutHandler.Submit)
	checkout.GET("/success", s.checkoutHandler.Success)

	// -------- admin --------
	admin := api.Group("", auth, authmw.RequireAdmin())

	admin.GET("/coupons", s.couponHandler.List)
	admin.POST("/coupons", s.couponHandler.Create)
	admin.GET("/coupons/:id", s.couponHandler.Get)
	admin.PUT("/coupons/:id", s.couponHandler.Update)
	admin.DELETE("/coupons/:id", s.couponHandler.Delete)

	admin.GET("/transactions", s.transactionHandler.List)
	admin.GET("/transactions/stats", s.transactionHandler.Stats)
	admin.GET("/transactions/export", s.transactionHandler.Export)
	admin.GET("/transactions/:id", s.transactionHandler.Get)
	admin.POST("/transactions/:id/approve", s.transactionHandler.Approve)
	admin.POST("/transactions/:id/refund", s.transactionHandler.Refund)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
