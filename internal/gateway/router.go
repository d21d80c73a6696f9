// Package gateway assembles the console's HTTP API.
package gateway

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/database"
	"invoice-console/internal/editor"
	"invoice-console/internal/gateway/handlers"
	"invoice-console/internal/gateway/middleware"
	"invoice-console/internal/store"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Collection  *store.Collection
	Deleter     handlers.InvoiceDeleter
	Editor      *editor.Manager
	Journal     database.Journal
	Revoker     middleware.Revoker
	JWTSecret   []byte
	PageSize    int
	RateLimit   string
	CORSOrigins []string
	Checks      map[string]HealthCheck
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	if len(deps.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.CORSOrigins))
	}
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if deps.RateLimit != "" {
		r.Use(middleware.RateLimit(deps.RateLimit))
	}
	r.Use(dataSourceMiddleware(deps.Collection))

	invoiceHandler := handlers.NewInvoiceHTTPHandler(deps.Collection, deps.Deleter, deps.Journal, deps.PageSize)
	editorHandler := handlers.NewEditorHTTPHandler(deps.Editor, deps.Collection, deps.Journal)
	authHandler := handlers.NewAuthHTTPHandler(deps.Revoker)

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(deps.JWTSecret, deps.Revoker))
	{
		auth := protected.Group("/auth")
		{
			auth.GET("/session", authHandler.GetSession)
			auth.POST("/logout", authHandler.Logout)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.GET("/tabs", invoiceHandler.GetTabCounts)
			invoices.POST("/reload", invoiceHandler.ReloadInvoices)
			invoices.GET("/export", invoiceHandler.ExportInvoices)
			invoices.GET("/:id", invoiceHandler.GetInvoice)
			invoices.GET("/:id/pdf", invoiceHandler.SendInvoice)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}

		editorGroup := protected.Group("/editor")
		{
			editorGroup.POST("", editorHandler.OpenEditor)
			editorGroup.GET("/:sid", editorHandler.GetEditor)
			editorGroup.PUT("/:sid/form", editorHandler.UpdateForm)
			editorGroup.POST("/:sid/items", editorHandler.AddLineItem)
			editorGroup.DELETE("/:sid/items/:index", editorHandler.RemoveLineItem)
			editorGroup.POST("/:sid/submit", editorHandler.SubmitEditor)
			editorGroup.DELETE("/:sid", editorHandler.CancelEditor)
		}

		if deps.Journal != nil {
			journalHandler := handlers.NewJournalHTTPHandler(deps.Journal)
			protected.GET("/journal", journalHandler.ListSubmissions)
		} else {
			protected.GET("/journal", serviceUnavailableHandler("Submission journal"))
		}
	}

	r.GET("/health", healthCheckHandler(deps.Collection))
	r.GET("/health/detailed", detailedHealthCheckHandler(deps.Collection, deps.Checks))

	return r
}

func serviceUnavailableHandler(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": serviceName + " is currently unavailable",
			"error":   "SERVICE_UNAVAILABLE",
		})
	}
}

// dataSourceMiddleware tells clients whether they are looking at live data
// or the sample fallback.
func dataSourceMiddleware(collection *store.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		if collection.State() == store.StateDegraded {
			c.Header("X-Invoice-Data", "sample")
		} else {
			c.Header("X-Invoice-Data", "live")
		}
		c.Next()
	}
}

func healthCheckHandler(collection *store.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		st := collection.Status()
		if st.State == store.StateDegraded {
			status = "degraded"
			httpStatus = http.StatusPartialContent
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"message":    "Server is running",
			"collection": st,
			"timestamp":  time.Now(),
		})
	}
}

func detailedHealthCheckHandler(collection *store.Collection, checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		services := map[string]interface{}{
			"upstream": collectionHealth(collection.Status()),
		}
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			services[name] = checkServiceHealth(checks[name](ctx))
		}

		overallStatus := "healthy"
		for _, service := range services {
			if serviceMap, ok := service.(map[string]interface{}); ok {
				if serviceMap["status"] != "healthy" {
					overallStatus = "degraded"
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"overall_status": overallStatus,
			"services":       services,
			"timestamp":      time.Now(),
		})
	}
}

func collectionHealth(st store.Status) map[string]interface{} {
	switch st.State {
	case store.StateReady:
		return map[string]interface{}{
			"status":    "healthy",
			"message":   "Invoices loaded from upstream",
			"count":     st.Count,
			"loaded_at": st.LoadedAt,
		}
	case store.StateDegraded:
		return map[string]interface{}{
			"status":  "degraded",
			"message": st.Advisory,
			"error":   st.LastErr,
		}
	default:
		return map[string]interface{}{
			"status":  string(st.State),
			"message": "Invoices not loaded yet",
		}
	}
}

func checkServiceHealth(err error) map[string]interface{} {
	if err != nil {
		return map[string]interface{}{
			"status":  "unavailable",
			"message": err.Error(),
		}
	}
	return map[string]interface{}{
		"status":  "healthy",
		"message": "Service is responding",
	}
}
