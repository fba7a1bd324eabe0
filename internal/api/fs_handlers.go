package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/fsops"
)

// FolderChildren lists one page of a directory's subdirectories
func (h *Handler) FolderChildren(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No dir provided"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	fp, err := fsops.FolderChildren(dir, page, pageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fp)
}

// FolderTree returns a directory's recursive subtree
func (h *Handler) FolderTree(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No dir provided"})
		return
	}

	tree, err := fsops.FolderTree(dir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tree)
}

// FolderImages lists image files directly inside a directory
func (h *Handler) FolderImages(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No dir provided"})
		return
	}

	files, err := fsops.ImageFiles(dir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": files})
}

type deleteFoldersRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// DeleteFolders removes folders, reporting per-item outcomes
func (h *Handler) DeleteFolders(c *gin.Context) {
	var req deleteFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No paths provided"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": fsops.DeleteFolders(req.Paths)})
}

type moveFoldersRequest struct {
	Paths  []string `json:"paths" binding:"required"`
	Target string   `json:"target" binding:"required"`
}

// MoveFolders moves folders into a target directory
func (h *Handler) MoveFolders(c *gin.Context) {
	var req moveFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paths and target required"})
		return
	}

	results, err := fsops.MoveFolders(req.Paths, req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
