package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/catalog"
	"github.com/aryannaik/sustainify/internal/export"
	"github.com/aryannaik/sustainify/internal/query"
	"github.com/aryannaik/sustainify/internal/session"
)

type Handlers struct {
	ctrl   *session.Controller
	logger *zap.Logger
}

func NewHandlers(ctrl *session.Controller, logger *zap.Logger) *Handlers {
	return &Handlers{ctrl: ctrl, logger: logger}
}

type pageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type pageResponse struct {
	Items []catalog.Product `json:"items"`
	Meta  pageMeta          `json:"meta"`
	View  query.ViewState   `json:"view"`
}

func toResponse(s session.Snapshot) pageResponse {
	return pageResponse{
		Items: s.Result.Items,
		Meta: pageMeta{
			Page:       s.View.Page,
			PerPage:    s.View.PerPage,
			Total:      s.Result.Total,
			TotalPages: s.TotalPages,
		},
		View: s.View,
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// listParams holds the view parameters of a products request. Each is
// applied only when present.
type listParams struct {
	query    *string
	category *string
	sort     *query.SortOrder
	bookmark *bool
	page     *int
}

// parseListParams validates every parameter before any of them is applied,
// so a rejected request leaves the session untouched.
func parseListParams(c *gin.Context) (listParams, error) {
	var p listParams
	if q, ok := c.GetQuery("q"); ok {
		p.query = &q
	}
	if cat, ok := c.GetQuery("category"); ok {
		p.category = &cat
	}
	if raw, ok := c.GetQuery("sort"); ok {
		order, err := query.ParseSortOrder(raw)
		if err != nil {
			return p, err
		}
		p.sort = &order
	}
	if raw, ok := c.GetQuery("bookmarks"); ok {
		want, err := strconv.ParseBool(raw)
		if err != nil {
			return p, errors.New("bookmarks must be true or false")
		}
		p.bookmark = &want
	}
	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, errors.New("page must be a number")
		}
		p.page = &n
	}
	return p, nil
}

// ListProducts applies any view parameters present in the query string,
// filters first and the page last, and returns the resulting page.
func (h *Handlers) ListProducts(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	s := h.ctrl.Refresh()
	if params.query != nil {
		s = h.ctrl.SetQuery(*params.query)
	}
	if params.category != nil {
		s = h.ctrl.SetCategory(*params.category)
	}
	if params.sort != nil {
		s = h.ctrl.SetSort(*params.sort)
	}
	if params.bookmark != nil && *params.bookmark != s.View.OnlyBookmarks {
		s = h.ctrl.ToggleBookmarkOnly()
	}
	if params.page != nil {
		s = h.ctrl.SetPage(*params.page)
	}

	c.JSON(http.StatusOK, toResponse(s))
}

func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product":    p,
		"bookmarked": h.ctrl.IsBookmarked(p.ID),
	})
}

func (h *Handlers) ListCategories(c *gin.Context) {
	cats := append([]string{query.AllCategories}, h.ctrl.Categories()...)
	c.JSON(http.StatusOK, cats)
}

type valueRequest struct {
	Value string `json:"value" form:"value"`
}

func (h *Handlers) bindValue(c *gin.Context) (string, bool) {
	var req valueRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	return req.Value, true
}

func (h *Handlers) SetQuery(c *gin.Context) {
	v, ok := h.bindValue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponse(h.ctrl.SetQuery(v)))
}

func (h *Handlers) SetCategory(c *gin.Context) {
	v, ok := h.bindValue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponse(h.ctrl.SetCategory(v)))
}

func (h *Handlers) SetSort(c *gin.Context) {
	v, ok := h.bindValue(c)
	if !ok {
		return
	}
	order, err := query.ParseSortOrder(v)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, toResponse(h.ctrl.SetSort(order)))
}

func (h *Handlers) SetPage(c *gin.Context) {
	v, ok := h.bindValue(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeError(c, http.StatusBadRequest, "page must be a number")
		return
	}
	c.JSON(http.StatusOK, toResponse(h.ctrl.SetPage(n)))
}

func (h *Handlers) ToggleBookmarkOnly(c *gin.Context) {
	c.JSON(http.StatusOK, toResponse(h.ctrl.ToggleBookmarkOnly()))
}

func (h *Handlers) ListBookmarks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.ctrl.Bookmarks()})
}

func (h *Handlers) ToggleBookmark(c *gin.Context) {
	id := c.Param("id")
	on, s := h.ctrl.ToggleBookmark(id)
	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"bookmarked": on,
		"page":       toResponse(s),
	})
}

func (h *Handlers) ListCompare(c *gin.Context) {
	items := h.ctrl.Compared()
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"ready": len(items) >= session.MinCompare,
	})
}

func (h *Handlers) ToggleCompare(c *gin.Context) {
	id := c.Param("id")
	on := h.ctrl.ToggleCompare(id)
	c.JSON(http.StatusOK, gin.H{"id": id, "selected": on})
}

// contributionRequest carries the raw form text; list fields are comma separated.
type contributionRequest struct {
	Name           string `json:"name" form:"name"`
	Category       string `json:"category" form:"category"`
	Replaces       string `json:"replaces" form:"replaces"`
	Description    string `json:"description" form:"description"`
	Tags           string `json:"tags" form:"tags"`
	Materials      string `json:"materials" form:"materials"`
	Certifications string `json:"certifications" form:"certifications"`
	Image          string `json:"image" form:"image"`
}

func (r contributionRequest) fields() catalog.Fields {
	return catalog.Fields{
		Name:           r.Name,
		Category:       r.Category,
		Replaces:       r.Replaces,
		Description:    r.Description,
		Tags:           catalog.SplitList(r.Tags),
		Materials:      catalog.SplitList(r.Materials),
		Certifications: catalog.SplitList(r.Certifications),
		Image:          strings.TrimSpace(r.Image),
	}
}

func (h *Handlers) AddContribution(c *gin.Context) {
	var req contributionRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, s := h.ctrl.AddContribution(req.fields())
	c.JSON(http.StatusCreated, gin.H{
		"product": p,
		"page":    toResponse(s),
	})
}

func (h *Handlers) DeleteContribution(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.ctrl.DeleteContribution(id); err != nil {
		if errors.Is(err, session.ErrNotContribution) {
			writeError(c, http.StatusForbidden, "only your own contributions can be deleted")
			return
		}
		h.logger.Error("Delete failed", zap.String("id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX downloads every item matching the current view.
func (h *Handlers) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.ctrl.Matches()); err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "export failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sustainify.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
