package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

const oprLogRetention = 365 * 24 * time.Hour

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	jobs := []struct {
		spec string
		fn   func()
	}{
		{"@daily", a.SchedClearOprLogTask},
		{"@daily", a.SchedClearResetTokenTask},
		{"@hourly", a.SchedLowStockTask},
	}
	for _, job := range jobs {
		if _, err := a.sched.AddFunc(job.spec, job.fn); err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedClearOprLogTask drops operator log entries older than one year.
func (a *Application) SchedClearOprLogTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	res := a.gormDB.
		Where("opt_time < ?", time.Now().Add(-oprLogRetention)).
		Delete(&domain.SysOprLog{})
	if res.Error != nil {
		zap.L().Error("clear operator logs failed", zap.String("namespace", "jobs"), zap.Error(res.Error))
		return
	}
	zap.L().Info("cleared operator logs", zap.String("namespace", "jobs"), zap.Int64("rows", res.RowsAffected))
}

// SchedClearResetTokenTask drops expired password reset tokens.
func (a *Application) SchedClearResetTokenTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.accounts.PurgeExpiredResets(context.Background())
	if err != nil {
		zap.L().Error("clear reset tokens failed", zap.String("namespace", "jobs"), zap.Error(err))
		return
	}
	zap.L().Info("cleared reset tokens", zap.String("namespace", "jobs"), zap.Int64("rows", n))
}

// SchedLowStockTask logs a warning for every product at or below its threshold.
func (a *Application) SchedLowStockTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	rows, err := a.LowStockProducts(context.Background())
	if err != nil {
		zap.L().Error("low stock scan failed", zap.String("namespace", "jobs"), zap.Error(err))
		return
	}
	for _, p := range rows {
		zap.L().Warn("product low on stock",
			zap.String("namespace", "jobs"),
			zap.Int64("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock))
	}
}

// LowStockProducts lists products at or below their own threshold.
func (a *Application) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	err := a.gormDB.WithContext(ctx).
		Where("stock <= CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE ? END", domain.DefaultLowStockThreshold).
		Order("stock ASC, name ASC").
		Find(&rows).Error
	return rows, err
}
