// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"county-map/internal/api"
	"county-map/internal/locate"
	"county-map/internal/logger"
	"county-map/internal/metrics"
	"county-map/internal/middleware"
	"county-map/internal/surface"
	"county-map/internal/utils"
	"county-map/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)
	ui := os.Getenv("UI_DIST")
	if ui == "" {
		ui = filepath.Join("ui", "dist")
	}
	l.Debug("config_ui_dir", "dir", ui)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 目录是全部功能的前提，加载失败直接退出
	cat, err := utils.LoadCatalog(ctx, os.Getenv("CATALOG_SOURCE"), os.Getenv("COUNTY_GEOJSON_PATH"))
	if err != nil {
		l.Error("catalog_load_error", "err", err)
		os.Exit(1)
	}
	if rep := cat.CheckMembership(); !rep.Clean() {
		l.Warn("membership_inconsistent",
			"unassigned", len(rep.Unassigned),
			"multi_region", len(rep.MultiRegion),
			"unknown_members", len(rep.UnknownMembers),
			"duplicate_cities", len(rep.DuplicateCities),
		)
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
	} else {
		l.Info("redis_ping_ok")
	}

	var loc *locate.Locator
	if p := os.Getenv("GEOIP_MMDB_PATH"); p != "" {
		if db, err := locate.OpenMMDB(p); err == nil {
			defer db.Close()
			loc = locate.New(db, cat)
			l.Info("mmdb_ready", "path", p)
		} else {
			l.Error("mmdb_open_error", "err", err)
		}
	} else {
		l.Info("locate_disabled", "reason", "GEOIP_MMDB_PATH empty")
	}

	ping := 10
	if s := os.Getenv("SURFACE_PING_INTERVAL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil {
			ping = n
		}
	}
	hub := surface.NewHub(cat, surface.WithHeartbeat(time.Duration(ping)*time.Second))
	go hub.Run(ctx)

	mux := http.NewServeMux()
	apiRouter := api.BuildRoutes(api.Deps{Catalog: cat, Hub: hub, Locator: loc, Redis: rc, WSContext: ctx, PongWait: 3 * time.Duration(ping) * time.Second})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiRouter))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.Handle("/", http.FileServer(http.Dir(ui)))

	// NOTE: 向前端暴露 API 基础路径与初始视野，避免硬编码
	lat := envFloat("MAP_CENTER_LAT", 31.9686)
	lon := envFloat("MAP_CENTER_LON", -99.9018)
	zoom := envFloat("MAP_ZOOM", 6)
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		fmt.Fprintf(w, "window.__API_BASE__='%s'\n", apiBase)
		fmt.Fprintf(w, "window.__MAP_CENTER__=[%g,%g]\n", lat, lon)
		fmt.Fprintf(w, "window.__MAP_ZOOM__=%g\n", zoom)
		fmt.Fprintf(w, "window.__CATALOG_FINGERPRINT__='%s'\n", cat.Fingerprint())
		fmt.Fprintf(w, "window.__COMMIT_SHA__='%s'", version.Commit)
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if os.Getenv("TLS_SELF_SIGNED") == "true" {
			if err := utils.EnsureSelfSignedCert(certPath, keyPath, "countymap.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
		}
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			go redirectToHTTPS(l, addr)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		serveDone(l, s.ListenAndServeTLS(certPath, keyPath))
		return
	}
	l.Info("listening", "addr", addr)
	serveDone(l, s.ListenAndServe())
}

func serveDone(l *slog.Logger, err error) {
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}

func envFloat(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}
