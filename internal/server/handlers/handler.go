package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/app"
	"github.com/mamadbah2/harvest/internal/domain/models"
)

const (
	principalKey    = "principal"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// Handler adapts HTTP requests onto the application state.
type Handler struct {
	state  *app.State
	logger *zap.Logger
}

// NewHandler constructs the HTTP handler adapter.
func NewHandler(state *app.State, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{state: state, logger: logger}
}

// RequestID tags every request with an id, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Authenticate resolves HTTP Basic credentials into a principal.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, secret, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="harvest"`)
			h.fail(c, models.ErrUnauthenticated)
			c.Abort()
			return
		}
		principal, err := h.state.Authenticate(username, secret)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="harvest"`)
			h.logger.Warn("authentication failed", zap.String("user", username), zap.String("request_id", c.GetString(requestIDKey)))
			h.fail(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// Require rejects requests whose principal lacks the capability before the
// handler runs. The application state checks again.
func Require(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		if err := p.Authorize(capability, c.Request.Method+" "+c.FullPath()); err != nil {
			status, body := errorBody(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Reload re-reads every collection from storage.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.state.Reload(c.Request.Context(), principal(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func principal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}

func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &models.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// respond writes the result of a command. When only the write to storage
// failed the applied record is still returned alongside the error.
func (h *Handler) respond(c *gin.Context, status int, record any, err error) {
	if err == nil {
		c.JSON(status, record)
		return
	}
	var perr *models.PersistenceError
	if errors.As(err, &perr) {
		h.logger.Error("command applied but not persisted",
			zap.String("collection", perr.Collection),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		code, body := errorBody(err)
		body["record"] = record
		c.JSON(code, body)
		return
	}
	h.fail(c, err)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
	}
	c.JSON(status, body)
}
