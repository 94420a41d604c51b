// Package web serves the built frontend for self-contained deployment.
package web

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// HasStaticFiles reports whether a built frontend exists at dir.
func HasStaticFiles(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil && !info.IsDir()
}

// RegisterStaticRoutes serves dir under basePath with an index.html
// fallback, so frontend router paths deep-link correctly. API routes must
// be registered first.
func RegisterStaticRoutes(e *echo.Echo, basePath, dir string) {
	if basePath == "" {
		basePath = "/"
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	root := http.Dir(dir)
	fileServer := http.StripPrefix(strings.TrimSuffix(basePath, "/"), http.FileServer(root))

	e.GET(basePath+"*", func(c echo.Context) error {
		requestPath := path.Clean(strings.TrimPrefix(c.Request().URL.Path, strings.TrimSuffix(basePath, "/")))
		if requestPath == "." {
			requestPath = "/"
		}

		f, err := root.Open(requestPath)
		if err != nil {
			// Not a file on disk: a frontend route. Serve index.html and
			// let the frontend router take it from there.
			return serveIndexHTML(c, dir)
		}
		defer f.Close()

		if stat, err := f.Stat(); err != nil || stat.IsDir() {
			return serveIndexHTML(c, dir)
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func serveIndexHTML(c echo.Context, dir string) error {
	f, err := os.Open(filepath.Join(dir, "index.html"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read index.html")
	}
	return c.HTMLBlob(http.StatusOK, content)
}
