package httpserver

import (
	"errors"
	"net/http"

	"nexuscart/internal/domain"
	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type syncCartRequest struct {
	Version int64             `json:"version"`
	Items   []domain.CartItem `json:"items"`
}

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := carts.Summarize(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func addCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		cart, err := carts.Add(c.Request.Context(), currentUser(c).ID, req.ProductID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func setCartQuantityHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		cart, err := carts.SetQuantity(c.Request.Context(), currentUser(c).ID, c.Param("productId"), req.Quantity)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Clear(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func syncCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syncCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "items and version required"})
			return
		}
		cart, err := carts.Sync(c.Request.Context(), currentUser(c).ID, req.Items, req.Version)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrStaleCart):
		c.JSON(http.StatusConflict, gin.H{"error": "cart changed, re-read and retry"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err.Error() == "product not found":
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case err.Error() == "productId required":
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
