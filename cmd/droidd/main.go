package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/droidlink/internal/api"
	"github.com/taoyao-code/droidlink/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/droidlink/internal/config"
	"github.com/taoyao-code/droidlink/internal/droid"
	"github.com/taoyao-code/droidlink/internal/health"
	"github.com/taoyao-code/droidlink/internal/httpserver"
	"github.com/taoyao-code/droidlink/internal/link"
	"github.com/taoyao-code/droidlink/internal/logging"
	"github.com/taoyao-code/droidlink/internal/metrics"
	"github.com/taoyao-code/droidlink/internal/transport/ble"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}

	// 4) BLE 链路 + 命令调度器 + 机器人句柄
	tr := ble.New(ble.Config{
		Name:        cfg.Droid.Name,
		Address:     cfg.Droid.Address,
		ScanTimeout: cfg.Droid.ScanTimeout,
		ChunkDelay:  cfg.Droid.ChunkDelay,
	}, log)
	disp := link.New(tr, link.Config{
		Timeout:     cfg.Droid.CommandTimeout,
		MinInterval: cfg.Droid.MinCmdInterval,
	}, log, appMetrics)
	// 链路异常断开时让所有在飞请求立即失败
	tr.SetOnDisconnect(func() {
		disp.FailPending(link.ErrDisconnected)
	})
	d := droid.New(tr, disp, droid.Config{
		Timeout:       cfg.Droid.CommandTimeout,
		WakeOnConnect: cfg.Droid.WakeOnConnect,
	}, log)

	// 5) HTTP 控制面
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, d.IsConnected)
	handler := api.NewHandler(d, ble.Discover, log)
	authCfg := middleware.AuthConfig{APIKey: cfg.HTTP.APIKey, Enabled: cfg.HTTP.APIKey != ""}
	api.RegisterRoutes(httpSrv.Engine(), handler, authCfg, log)

	agg := health.NewAggregator(health.NewLinkChecker(d, disp, 3*time.Second))
	health.RegisterHTTPRoutes(httpSrv.Engine(), agg)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
		}
	}()

	// 6) 连接机器人（失败不退出，可通过重启或扫描接口排查）
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(rootCtx, cfg.Droid.ScanTimeout+30*time.Second)
	if err := d.Connect(connectCtx); err != nil {
		log.Error("droid connect failed", zap.Error(err))
	} else {
		log.Info("droid connected",
			zap.String("name", cfg.Droid.Name),
			zap.String("address", cfg.Droid.Address))
	}
	cancel()

	// 信号处理，优雅关闭
	<-rootCtx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if d.IsConnected() {
		sleepCtx, cancelSleep := context.WithTimeout(context.Background(), 3*time.Second)
		if err := d.Sleep(sleepCtx); err != nil {
			log.Warn("sleep before disconnect failed", zap.Error(err))
		}
		cancelSleep()
		_ = d.Disconnect()
	}
}
