package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Router struct {
	*gin.Engine
}

func NewRouter(
	logger *zap.Logger,
	tokenService port.TokenService,
	userHandler *UserHandler,
	draftHandler *DraftHandler,
	productHandler *ProductHandler,
	customerHandler *CustomerHandler,
	orderHandler *OrderHandler) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger.Named("http")))

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", userHandler.LoginUser)

		authed := api.Group("")
		authed.Use(authCheck(NewHandler(logger), tokenService))
		{
			authed.GET("/dashboard", orderHandler.Dashboard)
			authed.GET("/submissions", draftHandler.ListSubmissions)

			products := authed.Group("/products")
			{
				products.GET("", productHandler.ListProducts)
				products.POST("", productHandler.CreateProduct)
				products.GET("/categories", productHandler.ListCategories)
				products.GET("/:id", productHandler.GetProduct)
				products.PUT("/:id", productHandler.UpdateProduct)
				products.DELETE("/:id", productHandler.DeleteProduct)
			}

			customers := authed.Group("/customers")
			{
				customers.GET("", customerHandler.ListCustomers)
				customers.POST("", customerHandler.CreateCustomer)
				customers.GET("/:id", customerHandler.GetCustomer)
				customers.PUT("/:id", customerHandler.UpdateCustomer)
				customers.DELETE("/:id", customerHandler.DeleteCustomer)
			}

			orders := authed.Group("/orders")
			{
				orders.GET("", orderHandler.ListOrders)
				orders.GET("/number/:number", orderHandler.GetOrderByNumber)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.PUT("/:id", orderHandler.UpdateOrder)
				orders.DELETE("/:id", orderHandler.DeleteOrder)
				orders.POST("/:id/complete", orderHandler.CompleteOrder)
				orders.POST("/:id/cancel", orderHandler.CancelOrder)
				orders.POST("/:id/refund", orderHandler.RefundOrder)
			}

			drafts := authed.Group("/drafts")
			{
				drafts.POST("", draftHandler.CreateDraft)
				drafts.GET("/:id", draftHandler.GetDraft)
				drafts.PATCH("/:id", draftHandler.UpdateDetails)
				drafts.DELETE("/:id", draftHandler.DiscardDraft)
				drafts.POST("/:id/items", draftHandler.AddItem)
				drafts.PUT("/:id/items/:product", draftHandler.SetItemQuantity)
				drafts.DELETE("/:id/items/:product", draftHandler.RemoveItem)
				drafts.POST("/:id/catalog", draftHandler.RefreshCatalog)
				drafts.POST("/:id/submit", draftHandler.Submit)
			}
		}
	}

	return &Router{router}, nil
}

// Serve runs the HTTP server until ctx is done, then shuts it down.
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
