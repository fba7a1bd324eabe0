package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/epub"
	"github.com/epubread/epubread/internal/pdf"
	"github.com/epubread/epubread/internal/txt"
)

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

// ExtractBook returns every page of an EPUB as data URLs
func (h *Handler) ExtractBook(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No path provided"})
		return
	}

	book, err := epub.ExtractPages(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, book)
}

// StatBook returns size and page count for an EPUB without decoding pages
func (h *Handler) StatBook(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No path provided"})
		return
	}

	stat, err := epub.Stat(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stat)
}

// StatPDF returns size and page count for a PDF
func (h *Handler) StatPDF(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No path provided"})
		return
	}

	stat, err := pdf.Stat(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stat)
}

// StatTxt returns size, encoding and page count for a text book
func (h *Handler) StatTxt(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No path provided"})
		return
	}

	stat, err := txt.Stat(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stat)
}

// ReadTxt returns the decoded pages of a text book
func (h *Handler) ReadTxt(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No path provided"})
		return
	}

	book, err := txt.ReadContent(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, book)
}
