package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/adminapi"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/app"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

var (
	BuildVersion = "develop"
	BuildTime    = "unknown"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables")
	printcfg = flag.Bool("printcfg", false, "print the effective config")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("shopd %s (built %s)\n", BuildVersion, BuildTime)
		return
	}
	if *h {
		flag.Usage()
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg := config.LoadConfig(*conffile)
	if *printcfg {
		out, _ := yaml.Marshal(cfg)
		fmt.Println(string(out))
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database tables recreated, the administrator is seeded on next start")
		return
	}

	var limiter webserver.Limiter
	if cfg.Web.RateLimit > 0 {
		if rdb := application.Redis(); rdb != nil {
			limiter = webserver.NewRedisLimiter(rdb, cfg.Web.RateLimit)
		} else {
			limiter = webserver.NewMemoryLimiter(cfg.Web.RateLimit)
		}
	}

	webserver.Init(webserver.Options{
		Config:  cfg,
		Gateway: application.Gateway(),
		Images:  application.Images(),
		Limiter: limiter,
	})
	adminapi.Init(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(webserver.Start)
	g.Go(func() error {
		<-ctx.Done()
		zap.S().Info("shutting down web server")
		return webserver.Shutdown(10 * time.Second)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("web server stopped: %v", err)
	}
}
