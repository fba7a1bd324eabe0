package api

import "github.com/gin-gonic/gin"

// NewRouter wires every handler onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.Ready)

	apiGroup := r.Group("/api")
	{
		// Books
		apiGroup.POST("/books/extract", h.ExtractBook)
		apiGroup.POST("/books/stat", h.StatBook)
		apiGroup.POST("/pdf/stat", h.StatPDF)

		// Plain text books
		apiGroup.POST("/txt/stat", h.StatTxt)
		apiGroup.POST("/txt/content", h.ReadTxt)
		apiGroup.POST("/txt/progress", h.SaveTxtProgress)
		apiGroup.GET("/txt/progress", h.ListTxtProgress)
		apiGroup.GET("/txt/progress/:bookId", h.LoadTxtProgress)
		apiGroup.DELETE("/txt/progress/:bookId", h.DeleteTxtProgress)

		// Reading progress
		apiGroup.POST("/progress", h.SaveProgress)
		apiGroup.GET("/progress", h.ListProgress)
		apiGroup.GET("/progress/:bookId", h.LoadProgress)
		apiGroup.DELETE("/progress/:bookId", h.DeleteProgress)

		// Saved images
		apiGroup.POST("/images", h.SaveImage)
		apiGroup.GET("/images", h.ListImages)
		apiGroup.GET("/images/stats", h.GetStats)
		apiGroup.GET("/images/:key", h.GetImage)
		apiGroup.PUT("/images/:key", h.UpdateImage)
		apiGroup.DELETE("/images/:key", h.DeleteImage)
		apiGroup.GET("/images/:key/paths", h.GetImagePaths)
		apiGroup.POST("/images/:key/additional", h.AddAdditionalImage)
		apiGroup.DELETE("/images/:key/additional/:extraKey", h.RemoveAdditionalImage)

		// Folder management
		apiGroup.GET("/fs/children", h.FolderChildren)
		apiGroup.GET("/fs/tree", h.FolderTree)
		apiGroup.GET("/fs/images", h.FolderImages)
		apiGroup.POST("/fs/delete", h.DeleteFolders)
		apiGroup.POST("/fs/move", h.MoveFolders)

		// Settings
		apiGroup.GET("/settings", h.GetSettings)
		apiGroup.PUT("/settings", h.SaveSettings)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
