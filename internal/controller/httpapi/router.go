package httpapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	// BookLimiter ограничение частоты POST /book, nil отключает
	BookLimiter *ClientLimiter
}

// NewRouter собирает маршруты и общий набор middleware
func NewRouter(h *Handlers, cfg RouterConfig, logger *zap.Logger) http.Handler {
	router := httprouter.New()

	router.GET("/health", h.Health)
	router.GET("/slots", h.ListSlots)
	router.GET("/slots/:id", h.GetSlot)
	router.GET("/slots/:id/audit", h.AuditSlot)
	router.POST("/book", RateLimit(cfg.BookLimiter, h.Book))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})

	return Chain(router,
		RequestID,
		Logging(logger),
		Recovery(logger),
		Timeout(cfg.RequestTimeout),
	)
}
