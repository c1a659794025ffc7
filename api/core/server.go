package core

import (
	"net/http"

	"github.com/anoixa/art-gallery/internal/app"
)

// StartServer 创建 http.Server 与清理函数
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.Config
	router, cleanup := setupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, cleanup
}
