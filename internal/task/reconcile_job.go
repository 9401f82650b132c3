package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/phj1120/vibe-pay-sub000/internal/config"
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"gorm.io/gorm"
)

// ReconcileJob 结算对账任务
// 扫描滞留在待处理状态的结算记录（进程中断导致的半成品）和失败的取消记录，
// 输出告警供人工对账，不做自动修复
type ReconcileJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewReconcileJob 创建结算对账任务
func NewReconcileJob(db *gorm.DB, cfg *config.Config) *ReconcileJob {
	return &ReconcileJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ReconcileJob) GetName() string {
	return "settlement_reconciler"
}

// GetSchedule 获取调度配置
func (j *ReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ReconcileJob) Execute() {
	logger.Debug("Starting settlement reconcile task")

	cutoff := time.Now().Add(-time.Duration(j.config.Task.PendingAgeLimit) * time.Second)

	// 滞留的待处理结算：外部渠道调用结果未知，需要人工确认
	var stale []model.SettlementRecord
	err := j.db.Where("pay_status_code = ? AND regist_date_time < ?",
		model.PayStatusPending, cutoff).Find(&stale).Error
	if err != nil {
		logger.Error("Failed to fetch stale pending settlements: %v", err)
		return
	}

	for _, rec := range stale {
		logger.Warn("Stale pending settlement found, manual reconciliation required. payNo=%s, orderNo=%s, wayCode=%s, amount=%d, registered=%s",
			rec.PayNo, rec.OrderNo, rec.PayWayCode, rec.Amount, rec.RegistDateTime.Format(time.RFC3339))
	}

	// 失败的结算：渠道拒绝或不可用，确认是否存在重复扣款
	var failed []model.SettlementRecord
	err = j.db.Where("pay_status_code = ? AND regist_date_time < ?",
		model.PayStatusFailed, cutoff).Find(&failed).Error
	if err != nil {
		logger.Error("Failed to fetch failed settlements: %v", err)
		return
	}

	for _, rec := range failed {
		logger.Warn("Failed settlement found. payNo=%s, orderNo=%s, wayCode=%s, amount=%d",
			rec.PayNo, rec.OrderNo, rec.PayWayCode, rec.Amount)
	}

	if len(stale) > 0 || len(failed) > 0 {
		logger.Info("Settlement reconcile task completed. stale=%d, failed=%d", len(stale), len(failed))
	} else {
		logger.Debug("Settlement reconcile task completed. No anomalies found")
	}
}
