package handlers

import (
	"errors"
	"net/http"

	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errListItems  = "failed to list items"
	errBrowse     = "failed to browse market"
	errCreateItem = "failed to create item"
	errShowItem   = "failed to load item"
	errUpdateItem = "failed to update item"
	errDeleteItem = "failed to delete item"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      List owned items
// @Description  Items reachable from the caller's owned-set, newest first.
// @Tags         items
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, items"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/items [get]
// @Security     BearerAuth
func (h *Handler) listItems(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthorized})
		return
	}

	items, err := h.services.Items.List(c.Request.Context(), user.ID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListItems, "items_list_failed", err, "user_id", user.ID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// @Summary      Browse market
// @Description  Available items across all sellers; optional category equality and case-insensitive text search.
// @Tags         items
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Param        q         query  string  false  "Substring match over title and description"
// @Success      200  {object}  map[string]interface{}  "count, items"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/market [get]
// @Security     BearerAuth
func (h *Handler) browseMarket(c *gin.Context) {
	items, err := h.services.Items.Browse(c.Request.Context(), service.BrowseFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errBrowse, "market_browse_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// @Summary      Create item
// @Description  Owner is always the authenticated caller; owner/id values in the body are discarded.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  map[string]interface{}  true  "Item fields (title, price required)"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/items [post]
// @Security     BearerAuth
func (h *Handler) createItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthorized})
		return
	}

	var fields map[string]any
	if ok := h.bindJSONOrBadRequest(c, &fields); !ok {
		return
	}

	item, err := h.services.Items.Create(c.Request.Context(), user.ID, fields)
	if err != nil {
		h.debugf("item_create_rejected", "err", err, "user_id", user.ID)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// @Summary      Show item
// @Description  Fetch one item by id. Each read increments the view counter.
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "Item id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/items/{id} [get]
// @Security     BearerAuth
func (h *Handler) showItem(c *gin.Context) {
	item, err := h.services.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrItemNotFound.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errShowItem, "item_show_failed", err, "id", c.Param("id"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// @Summary      Update item
// @Description  Partial update; only allow-listed keys are applied, absent keys stay untouched.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Item id"
// @Param        body  body  map[string]interface{}  true  "Fields to change"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/items/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateItem(c *gin.Context) {
	var fields map[string]any
	if ok := h.bindJSONOrBadRequest(c, &fields); !ok {
		return
	}

	item, err := h.services.Items.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrItemNotFound.Error()})
			return
		}
		h.debugf("item_update_rejected", "err", err, "id", c.Param("id"))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// @Summary      Delete item
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "Item id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/items/{id} [delete]
// @Security     BearerAuth
func (h *Handler) destroyItem(c *gin.Context) {
	if err := h.services.Items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrItemNotFound.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteItem, "item_delete_failed", err, "id", c.Param("id"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}
