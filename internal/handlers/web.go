package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"marketplace/internal/models"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// Server-rendered views. There is no cookie or session store: the bearer
// token rides on every generated link and form action as ?token=..., which is
// why the middleware exposes the raw token alongside the user.

type webPage struct {
	Token string
	User  *models.User
	Item  *models.Item
	Items []models.Item
	Error string
}

func (h *Handler) newWebPage(c *gin.Context) webPage {
	user, _ := currentUser(c)
	return webPage{Token: currentToken(c), User: user}
}

// redirectWithToken sends a see-other redirect that keeps the caller
// authenticated on the next page.
func redirectWithToken(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path+"?token="+url.QueryEscape(currentToken(c)))
}

// renderError shows the error page with the token preserved so the caller can
// navigate back. The browser surface never receives JSON bodies.
func (h *Handler) renderError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.HTML(httpCode, "error.html", webPage{Token: currentToken(c), Error: userMsg})
}

// itemFormFields converts the posted form into the same field map the JSON
// API uses. The checkbox arrives as "on" when ticked and is absent otherwise;
// absence maps to an explicit non-"on" value so unticking persists.
func itemFormFields(c *gin.Context) map[string]any {
	return map[string]any{
		"title":       c.PostForm("title"),
		"description": c.PostForm("description"),
		"price":       c.PostForm("price"),
		"category":    c.PostForm("category"),
		"tags":        c.PostForm("tags"),
		"available":   c.PostForm("available"),
	}
}

func (h *Handler) webItemsIndex(c *gin.Context) {
	page := h.newWebPage(c)

	items, err := h.services.Items.List(c.Request.Context(), page.User.ID)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, errListItems, "web_items_index_failed", err)
		return
	}
	page.Items = items

	c.HTML(http.StatusOK, "index.html", page)
}

func (h *Handler) webItemNew(c *gin.Context) {
	c.HTML(http.StatusOK, "new.html", h.newWebPage(c))
}

func (h *Handler) webItemShow(c *gin.Context) {
	page := h.newWebPage(c)

	item, err := h.services.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			h.renderError(c, http.StatusNotFound, "item not found", "", nil)
			return
		}
		h.renderError(c, http.StatusInternalServerError, errShowItem, "web_item_show_failed", err, "id", c.Param("id"))
		return
	}
	page.Item = &item

	c.HTML(http.StatusOK, "show.html", page)
}

func (h *Handler) webItemEdit(c *gin.Context) {
	page := h.newWebPage(c)

	// Edit form loads the item without counting a marketplace view.
	items, err := h.services.Items.List(c.Request.Context(), page.User.ID)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, errShowItem, "web_item_edit_failed", err, "id", c.Param("id"))
		return
	}
	id := c.Param("id")
	for i := range items {
		if items[i].ID == id {
			page.Item = &items[i]
			break
		}
	}
	if page.Item == nil {
		h.renderError(c, http.StatusNotFound, "item not found", "", nil)
		return
	}

	c.HTML(http.StatusOK, "edit.html", page)
}

func (h *Handler) webItemCreate(c *gin.Context) {
	page := h.newWebPage(c)

	item, err := h.services.Items.Create(c.Request.Context(), page.User.ID, itemFormFields(c))
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "new.html", page)
		return
	}

	redirectWithToken(c, "/items/"+item.ID)
}

func (h *Handler) webItemUpdate(c *gin.Context) {
	page := h.newWebPage(c)
	id := c.Param("id")

	item, err := h.services.Items.Update(c.Request.Context(), id, itemFormFields(c))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			h.renderError(c, http.StatusNotFound, "item not found", "", nil)
			return
		}
		page.Error = err.Error()
		page.Item = &models.Item{ID: id}
		c.HTML(http.StatusBadRequest, "edit.html", page)
		return
	}

	redirectWithToken(c, "/items/"+item.ID)
}

func (h *Handler) webItemDelete(c *gin.Context) {
	if err := h.services.Items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			h.renderError(c, http.StatusNotFound, "item not found", "", nil)
			return
		}
		h.renderError(c, http.StatusInternalServerError, errDeleteItem, "web_item_delete_failed", err, "id", c.Param("id"))
		return
	}

	redirectWithToken(c, "/items")
}
