package models

import (
	"time"

	"github.com/bailflow/core/internal/domain/reconciliation"
)

// ReconciliationRunModel is the persistence model for reconciliation run records
type ReconciliationRunModel struct {
	BaseModel
	StartedAt  time.Time                    `gorm:"not null;index"`
	FinishedAt time.Time                    `gorm:"not null"`
	DurationMs int64                        `gorm:"not null"`
	Status     reconciliation.RunStatus     `gorm:"type:varchar(12);not null"`
	Overall    reconciliation.Severity      `gorm:"type:varchar(10);not null"`
	Results    reconciliation.CheckResults  `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (ReconciliationRunModel) TableName() string {
	return "reconciliation_runs"
}

// ToDomain converts the persistence model to a domain Run
func (m *ReconciliationRunModel) ToDomain() *reconciliation.Run {
	return &reconciliation.Run{
		BaseEntity: m.BaseModel.ToDomain(),
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Duration:   time.Duration(m.DurationMs) * time.Millisecond,
		Status:     m.Status,
		Overall:    m.Overall,
		Results:    m.Results,
	}
}

// ReconciliationRunModelFromDomain creates a persistence model from a domain Run
func ReconciliationRunModelFromDomain(r *reconciliation.Run) *ReconciliationRunModel {
	m := &ReconciliationRunModel{
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration.Milliseconds(),
		Status:     r.Status,
		Overall:    r.Overall,
		Results:    r.Results,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
