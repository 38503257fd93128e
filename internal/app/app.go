package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/cart"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/catalog"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/notify"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/order"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/sales"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/storage"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/wishlist"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus
	notifier  *notify.Notifier
	images    storage.ImageStore
	redis     *redis.Client

	accounts  *account.Service
	tokens    *auth.TokenManager
	gateway   *auth.Gateway
	catalog   *catalog.Service
	carts     *cart.Service
	wishlists *wishlist.Service
	orders    *order.Service
	sales     *sales.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ StorageProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Scheduler() *cron.Cron { return a.sched }

func (a *Application) Accounts() *account.Service { return a.accounts }

func (a *Application) Tokens() *auth.TokenManager { return a.tokens }

func (a *Application) Gateway() *auth.Gateway { return a.gateway }

func (a *Application) Catalog() *catalog.Service { return a.catalog }

func (a *Application) Carts() *cart.Service { return a.carts }

func (a *Application) Wishlists() *wishlist.Service { return a.wishlists }

func (a *Application) Orders() *order.Service { return a.orders }

func (a *Application) Sales() *sales.Service { return a.sales }

func (a *Application) Images() storage.ImageStore { return a.images }

// Redis returns the shared redis client, nil when redis is not configured.
func (a *Application) Redis() *redis.Client { return a.redis }

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Passwd,
			DB:       cfg.Redis.DB,
		})
	}

	if err := a.Setup(context.Background()); err != nil {
		zap.S().Errorf("application setup failed: %v", err)
		panic(err)
	}

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Setup migrates the schema on the current database handle and builds the
// services, the event bus and the notifier on top of it.
func (a *Application) Setup(ctx context.Context) error {
	cfg := a.appConfig
	if err := a.MigrateDB(false); err != nil {
		return err
	}

	images, err := storage.New(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "init image storage")
	}
	a.images = images

	a.bus = EventBus.New()
	a.notifier, err = notify.NewNotifier(notify.NewMailer(cfg.Mail), cfg.Notify.Workers, cfg.Web.PublicURL)
	if err != nil {
		return err
	}
	if err = a.notifier.Subscribe(a.bus); err != nil {
		return err
	}

	a.accounts = account.NewService(account.NewGormRepository(a.gormDB), a.bus)
	a.tokens = auth.NewTokenManager(cfg.Web.Secret, time.Duration(cfg.Web.TokenExpire)*time.Hour)
	a.gateway = auth.NewGateway(a.tokens, a.accounts)
	a.catalog = catalog.NewService(catalog.NewGormRepository(a.gormDB))
	a.carts = cart.NewService(cart.NewGormRepository(a.gormDB), a.catalog)
	a.wishlists = wishlist.NewService(a.gormDB, a.catalog)
	a.orders = order.NewService(a.gormDB, a.accounts, a.bus)
	a.sales = sales.NewService(a.gormDB)

	if err = a.checkSuper(ctx); err != nil {
		return err
	}
	if cfg.System.Debug {
		a.checkProducts(ctx)
	}
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	if err := db.Migrator().AutoMigrate(domain.Tables...); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	return nil
}

func (a *Application) DropAll() {
	if err := a.gormDB.Migrator().DropTable(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// InitDb recreates every table empty.
func (a *Application) InitDb() {
	a.DropAll()
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = zap.L().Sync()
}
