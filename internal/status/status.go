// Package status serves a read-only HTTP view of the ledger and recent rounds.
package status

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/constants"
	"github.com/xonecas/pnw-recruiter/internal/recruit"
	"github.com/xonecas/pnw-recruiter/internal/store"
)

// Ledger is the read side of the store.
type Ledger interface {
	LastContactTime(ctx context.Context, nationID int64) (time.Time, bool, error)
	ListContacts(ctx context.Context, limit int) ([]store.Contact, error)
	CountContacts(ctx context.Context) (int, error)
	ListRounds(ctx context.Context, limit int) ([]store.Round, error)
}

// Engine exposes the state of the round loop.
type Engine interface {
	State() recruit.RoundState
	LastRound() (recruit.RoundSummary, bool)
}

type handlers struct {
	ledger Ledger
	engine Engine
}

// New builds the router.
func New(ledger Ledger, engine Engine) *gin.Engine {
	g := gin.New()
	g.Use(requestLogger(), gin.Recovery())

	h := &handlers{ledger: ledger, engine: engine}
	g.GET("/healthz", h.health)
	g.GET("/rounds", h.rounds)
	g.GET("/contacts", h.contacts)
	g.GET("/contacts/:id", h.contact)
	return g
}

// Serve runs the status server on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.StatusShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type lastRound struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

func (h *handlers) health(c *gin.Context) {
	count, err := h.ledger.CountContacts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}

	resp := gin.H{
		"status":   "ok",
		"state":    h.engine.State(),
		"contacts": count,
	}
	if last, ok := h.engine.LastRound(); ok {
		lr := lastRound{
			ID:         last.ID,
			StartedAt:  last.StartedAt,
			FinishedAt: last.FinishedAt,
			Sent:       last.Sent,
			Failed:     last.Failed,
		}
		if last.Err != nil {
			lr.Error = last.Err.Error()
		}
		resp["last_round"] = lr
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) rounds(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	rounds, err := h.ledger.ListRounds(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

func (h *handlers) contacts(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	contacts, err := h.ledger.ListContacts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (h *handlers) contact(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nation id"})
		return
	}

	sent, ok, err := h.ledger.LastContactTime(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "nation never contacted"})
		return
	}
	c.JSON(http.StatusOK, store.Contact{NationID: id, TimeSent: sent})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return constants.DefaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > constants.MaxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(constants.MaxListLimit)})
		return 0, false
	}
	return limit, true
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Status request")
	}
}
