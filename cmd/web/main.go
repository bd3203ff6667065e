// Package main は社員管理Webクライアントのエントリーポイントです。
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/yourusername/employee-portal/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string) error {
	var envFile, port string

	flagSet := pflag.NewFlagSet("employee-portal", pflag.ContinueOnError)
	flagSet.StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "path to the .env file to load")
	flagSet.StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// 設定の読み込み
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	cleanup, err := setupRoutes(router, cfg, log.Default())
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}
	defer cleanup()

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s, backend: %s, session store: %s)", addr, cfg.GinMode, cfg.BackendURL, cfg.SessionStore)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
