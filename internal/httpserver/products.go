package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"nexuscart/internal/domain"
	"nexuscart/internal/image"
	catalogsvc "nexuscart/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

func listProductsHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.List(c.Request.Context(), c.Query("category"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// productFormInput reads the admin multipart form. Price arrives in cents
// to keep money integral end to end.
func productFormInput(c *gin.Context) (catalogsvc.WriteInput, *multipart.FileHeader, error) {
	priceCents, err := strconv.ParseInt(c.PostForm("priceCents"), 10, 64)
	if err != nil {
		return catalogsvc.WriteInput{}, nil, errors.New("priceCents must be an integer")
	}
	in := catalogsvc.WriteInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		PriceCents:  priceCents,
		Category:    c.PostForm("category"),
	}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		return catalogsvc.WriteInput{}, nil, errors.New("invalid image upload")
	}
	return in, header, nil
}

func createProductHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, header, err := productFormInput(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if header != nil {
			f, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
				return
			}
			defer f.Close()
			in.Image = f
		}
		p, err := catalog.Create(c.Request.Context(), in)
		if err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, header, err := productFormInput(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if header != nil {
			f, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
				return
			}
			defer f.Close()
			in.Image = f
		}
		p, err := catalog.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeCatalogError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, image.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": "image storage not configured"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
