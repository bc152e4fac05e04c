package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/config"
	"github.com/rbautista/tindahan-backend/internal/app/controller"
	"github.com/rbautista/tindahan-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	lookupController  *controller.LookupController
	productController *controller.ProductController
	storeController   *controller.StoreController
	adminController   *controller.AdminController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	lookupController *controller.LookupController,
	productController *controller.ProductController,
	storeController *controller.StoreController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		lookupController:  lookupController,
		productController: productController,
		storeController:   storeController,
		adminController:   adminController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TINDAHAN API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/oauth/google", r.authController.GoogleLogin)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		// Scan and search are public; a shopper does not need an account
		// to find a product nearby. Signed-in shoppers still get their
		// identity attached for request logging.
		lookup := v1.Group("/lookup")
		lookup.Use(r.authMiddleware.OptionalAuthenticate())
		{
			lookup.POST("/scan", r.lookupController.Scan)
			lookup.GET("/search", r.lookupController.Search)
			lookup.GET("/symbologies", r.lookupController.Symbologies)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:barcode", r.productController.GetProduct)
			products.GET("/:barcode/stores", r.lookupController.StoresForProduct)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.productController.CreateProduct,
			)
			products.GET("/:barcode/label",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.productController.GetProductLabel,
			)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("/:id", r.storeController.GetStore)
			stores.GET("/:id/products", r.storeController.ListStoreProducts)

			stores.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.CreateStore,
			)
			stores.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.UpdateStore,
			)
			stores.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.DeleteStore,
			)
			stores.POST("/:id/products",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.AssignProducts,
			)
			stores.PUT("/:id/products/:barcode",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.UpdateStoreProduct,
			)
			stores.DELETE("/:id/products/:barcode",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("owner", "admin"),
				r.storeController.RemoveStoreProduct,
			)
		}

		owner := v1.Group("/owner")
		owner.Use(r.authMiddleware.Authenticate())
		{
			owner.GET("/stores", r.storeController.GetMyStores)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/stores", r.adminController.ListStores)
			admin.GET("/stores/export", r.adminController.ExportStores)
			admin.PUT("/stores/:id/status", r.adminController.UpdateStoreStatus)
			admin.GET("/dashboard", r.adminController.GetDashboard)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presign", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
