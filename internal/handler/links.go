package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"linkstate/linkstate/internal/config"
	"linkstate/linkstate/internal/model"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/service"
	"linkstate/linkstate/internal/util"
)

const (
	msgNotFound = "URL not found"
	msgUpdated  = "URL updated successfully"
	msgDeleted  = "URL deleted successfully"
)

type Handler struct {
	cfg config.Config
	srv service.Links
}

func New(cfg config.Config, srv service.Links) *Handler { return &Handler{cfg: cfg, srv: srv} }

// POST /api/state/create
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReq

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResp{Error: "Invalid JSON body"})
		return
	}

	rec, err := h.srv.Create(c.Request.Context(), h.cfg.BaseURL, req.OriginalURL, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreateResp{URL: rec.ShortURL})
}

// GET /api/state/:token -> redirect
func (h *Handler) Redirect(c *gin.Context) {
	target, err := h.srv.Redirect(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}

// PUT /api/state/update/:token
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateReq

	token := c.Param("token")

	if err := c.ShouldBindJSON(&req); err != nil {
		// unknown tokens report 404 whatever the body
		if _, err := h.srv.Info(c.Request.Context(), h.cfg.BaseURL, token); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResp{Error: "Invalid JSON body"})
		return
	}

	if _, err := h.srv.Update(c.Request.Context(), token, req.OriginalURL); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResp{Message: msgUpdated})
}

// DELETE /api/state/delete/:token
func (h *Handler) Delete(c *gin.Context) {
	if err := h.srv.Delete(c.Request.Context(), c.Param("token")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResp{Message: msgDeleted})
}

// GET /api/state/info/:token
func (h *Handler) Info(c *gin.Context) {
	rec, err := h.srv.Info(c.Request.Context(), h.cfg.BaseURL, c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps service errors to status codes. Store faults expose their
// message in the body.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResp{Error: msgNotFound})
	case errors.Is(err, util.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, model.ErrorResp{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResp{Error: err.Error()})
	}
}
