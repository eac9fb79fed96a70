package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/es-stream-helper/docgate/internal/document/service"
	"github.com/es-stream-helper/docgate/internal/payload"
)

type Handler struct {
	svc service.Gateway
}

func New(svc service.Gateway) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the document routes. Insert and update accept the fields
// either as query parameters (GET) or as a JSON object body (POST).
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/:type/all", h.List)
	r.GET("/delete/:type/:id", h.Delete)
	r.GET("/insert/:type", h.Insert)
	r.POST("/insert/:type", h.Insert)
	r.GET("/update/:type/:id", h.Update)
	r.POST("/update/:type/:id", h.Update)

	// The static delete and update prefixes shadow "/:type/all" for those two
	// type names.
	r.GET("/delete/:type", h.listAs("delete"))
	r.GET("/update/:type", h.listAs("update"))
}

func (h *Handler) List(c *gin.Context) {
	h.list(c, c.Param("type"))
}

// listAs lists docType when the second path segment is "all" and 404s
// otherwise.
func (h *Handler) listAs(docType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("type") != "all" {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		h.list(c, docType)
	}
}

func (h *Handler) list(c *gin.Context, docType string) {
	docs, err := h.svc.List(c.Request.Context(), docType)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) Delete(c *gin.Context) {
	out, err := h.svc.Delete(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, out)
}

func (h *Handler) Insert(c *gin.Context) {
	doc, err := fields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Insert(c.Request.Context(), c.Param("type"), doc)
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, id)
}

func (h *Handler) Update(c *gin.Context) {
	doc, err := fields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.Update(c.Request.Context(), c.Param("type"), c.Param("id"), doc)
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, out)
}

// fields reads the document from the JSON body on POST and from the raw
// query string otherwise.
func fields(c *gin.Context) (*payload.Map, error) {
	if c.Request.Method != http.MethodPost {
		return payload.FromQuery(c.Request.URL.RawQuery)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return payload.NewMap(), nil
	}
	return payload.Unmarshal(body)
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
