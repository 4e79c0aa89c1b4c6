// Package staticserver serves the front-end files of the application.
package staticserver

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IndexPath is served for "/".
const IndexPath = "/login.html"

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

const notFoundPage = `<html>
    <head><title>404 - Not Found</title></head>
    <body>
        <h1>404 - File Not Found</h1>
        <p>The requested file <strong>%s</strong> was not found.</p>
        <a href="/login.html">Go to Login Page</a>
    </body>
</html>
`

// ContentType returns the content type served for a file name. Unknown extensions are text/plain.
func ContentType(name string) string {
	if ct, ok := contentTypes[filepath.Ext(name)]; ok {
		return ct
	}
	return "text/plain"
}

// Server serves files below Root.
type Server struct {
	root   string
	logger *zap.Logger
}

func New(root string, logger *zap.Logger) *Server {
	return &Server{root: root, logger: logger}
}

// Serve is a gin handler, mounted as the router's NoRoute fallback.
func (s *Server) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	urlPath := path.Clean("/" + c.Request.URL.Path)
	if urlPath == "/" {
		urlPath = IndexPath
	}
	filePath := filepath.Join(s.root, filepath.FromSlash(urlPath))

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Data(http.StatusNotFound, "text/html", []byte(fmt.Sprintf(notFoundPage, html.EscapeString(urlPath))))
			return
		}
		s.serverError(c, filePath, err)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		s.serverError(c, filePath, err)
		return
	}
	c.Data(http.StatusOK, ContentType(filePath), data)
}

func (s *Server) serverError(c *gin.Context, filePath string, err error) {
	s.logger.Error("Failed to read static file", zap.String("file", filePath), zap.Error(err))
	c.Data(http.StatusInternalServerError, "text/plain", []byte("Internal Server Error"))
}
