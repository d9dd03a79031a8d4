package database

import (
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// PorteVersionModel is the GORM model of the version registry. ActiveSlot
// holds the component name while the record is ACTIVE and NULL afterwards, so
// the unique index admits one ACTIVE record per component.
type PorteVersionModel struct {
	ID              string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	ComponentName   string    `gorm:"column:component_name;index:idx_porte_component;not null"`
	ActiveSlot      *string   `gorm:"column:active_slot;uniqueIndex:idx_porte_active_slot"`
	UpstreamRepo    string    `gorm:"column:upstream_repo;not null"`
	UpstreamVersion string    `gorm:"column:upstream_version"`
	PortedVersion   string    `gorm:"column:ported_version;not null"`
	Status          string    `gorm:"column:status;not null"`
	PortDate        time.Time `gorm:"column:port_date"`
	Author          string    `gorm:"column:author"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName returns the GORM table name.
func (PorteVersionModel) TableName() string { return "porte_versions" }

// VersionEvaluationModel stores one evaluation; an upstream version is
// evaluated at most once per porte.
type VersionEvaluationModel struct {
	ID              string                   `gorm:"primaryKey;column:id;type:varchar(36)"`
	PorteVersionID  string                   `gorm:"column:porte_version_id;type:varchar(36);uniqueIndex:idx_eval_porte_upstream,priority:1;not null"`
	UpstreamVersion string                   `gorm:"column:upstream_version;type:varchar(128);uniqueIndex:idx_eval_porte_upstream,priority:2;not null"`
	ComponentName   string                   `gorm:"column:component_name;index:idx_eval_component"`
	CurrentVersion  string                   `gorm:"column:current_version"`
	Decision        string                   `gorm:"column:decision;not null;default:PENDING"`
	DecisionReason  string                   `gorm:"column:decision_reason"`
	ConfidenceScore float64                  `gorm:"column:confidence_score"`
	ChangeAnalysis  *entities.ChangeAnalysis `gorm:"column:change_analysis;serializer:json"`
	RiskAssessment  *entities.RiskAssessment `gorm:"column:risk_assessment;serializer:json"`
	Implemented     bool                     `gorm:"column:implemented;not null;default:false"`
	Status          string                   `gorm:"column:status;not null"`
	ErrorMessage    string                   `gorm:"column:error_message"`
	CreatedAt       time.Time                `gorm:"column:created_at"`
	UpdatedAt       time.Time                `gorm:"column:updated_at"`
}

// TableName returns the GORM table name.
func (VersionEvaluationModel) TableName() string { return "version_evaluations" }

// PipelineExecutionModel stores one implementation attempt.
type PipelineExecutionModel struct {
	ID            string                    `gorm:"primaryKey;column:id;type:varchar(36)"`
	EvaluationID  string                    `gorm:"column:evaluation_id;index:idx_exec_evaluation;not null"`
	ComponentName string                    `gorm:"column:component_name"`
	FromVersion   string                    `gorm:"column:from_version"`
	ToVersion     string                    `gorm:"column:to_version"`
	Status        string                    `gorm:"column:status;index:idx_exec_status;not null"`
	Stages        []entities.StageResult    `gorm:"column:stages;serializer:json"`
	DryRun        bool                      `gorm:"column:dry_run"`
	ErrorMessage  string                    `gorm:"column:error_message"`
	Rollback      *entities.RollbackSummary `gorm:"column:rollback;serializer:json"`
	StartedAt     time.Time                 `gorm:"column:started_at"`
	CompletedAt   *time.Time                `gorm:"column:completed_at"`
}

// TableName returns the GORM table name.
func (PipelineExecutionModel) TableName() string { return "pipeline_executions" }

// ImplementationTaskModel stores a queued follow-up task.
type ImplementationTaskModel struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	EvaluationID  string    `gorm:"column:evaluation_id;index:idx_task_evaluation;not null"`
	ComponentName string    `gorm:"column:component_name"`
	TaskType      string    `gorm:"column:task_type;not null"`
	Status        string    `gorm:"column:status;index:idx_task_status;not null;default:queued"`
	Priority      int       `gorm:"column:priority"`
	ScheduledAt   time.Time `gorm:"column:scheduled_at"`
}

// TableName returns the GORM table name.
func (ImplementationTaskModel) TableName() string { return "implementation_tasks" }

func allModels() []any {
	return []any{
		&PorteVersionModel{},
		&VersionEvaluationModel{},
		&PipelineExecutionModel{},
		&ImplementationTaskModel{},
	}
}

func porteFromEntity(p *entities.PorteVersion) *PorteVersionModel {
	model := &PorteVersionModel{
		ID:              p.ID,
		ComponentName:   p.ComponentName,
		UpstreamRepo:    p.UpstreamRepo,
		UpstreamVersion: p.UpstreamVersion,
		PortedVersion:   p.PortedVersion,
		Status:          string(p.Status),
		PortDate:        p.PortDate,
		Author:          p.Author,
	}
	if p.IsActive() {
		slot := p.ComponentName
		model.ActiveSlot = &slot
	}
	return model
}

func (m *PorteVersionModel) toEntity() *entities.PorteVersion {
	return &entities.PorteVersion{
		ID:              m.ID,
		ComponentName:   m.ComponentName,
		UpstreamRepo:    m.UpstreamRepo,
		UpstreamVersion: m.UpstreamVersion,
		PortedVersion:   m.PortedVersion,
		Status:          entities.PorteStatus(m.Status),
		PortDate:        m.PortDate,
		Author:          m.Author,
	}
}

func evaluationFromEntity(e *entities.VersionEvaluation) *VersionEvaluationModel {
	return &VersionEvaluationModel{
		ID:              e.ID,
		PorteVersionID:  e.PorteVersionID,
		UpstreamVersion: e.UpstreamVersion,
		ComponentName:   e.ComponentName,
		CurrentVersion:  e.CurrentVersion,
		Decision:        string(e.Decision),
		DecisionReason:  e.DecisionReason,
		ConfidenceScore: e.ConfidenceScore,
		ChangeAnalysis:  e.ChangeAnalysis,
		RiskAssessment:  e.RiskAssessment,
		Implemented:     e.Implemented,
		Status:          string(e.Status),
		ErrorMessage:    e.ErrorMessage,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (m *VersionEvaluationModel) toEntity() *entities.VersionEvaluation {
	return &entities.VersionEvaluation{
		ID:              m.ID,
		PorteVersionID:  m.PorteVersionID,
		ComponentName:   m.ComponentName,
		UpstreamVersion: m.UpstreamVersion,
		CurrentVersion:  m.CurrentVersion,
		Decision:        entities.Decision(m.Decision),
		DecisionReason:  m.DecisionReason,
		ConfidenceScore: m.ConfidenceScore,
		ChangeAnalysis:  m.ChangeAnalysis,
		RiskAssessment:  m.RiskAssessment,
		Implemented:     m.Implemented,
		Status:          entities.EvaluationStatus(m.Status),
		ErrorMessage:    m.ErrorMessage,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func executionFromEntity(p *entities.PipelineExecution) *PipelineExecutionModel {
	return &PipelineExecutionModel{
		ID:            p.ID,
		EvaluationID:  p.EvaluationID,
		ComponentName: p.ComponentName,
		FromVersion:   p.FromVersion,
		ToVersion:     p.ToVersion,
		Status:        string(p.Status),
		Stages:        p.Stages,
		DryRun:        p.DryRun,
		ErrorMessage:  p.ErrorMessage,
		Rollback:      p.Rollback,
		StartedAt:     p.StartedAt,
		CompletedAt:   p.CompletedAt,
	}
}

func (m *PipelineExecutionModel) toEntity() *entities.PipelineExecution {
	return &entities.PipelineExecution{
		ID:            m.ID,
		EvaluationID:  m.EvaluationID,
		ComponentName: m.ComponentName,
		FromVersion:   m.FromVersion,
		ToVersion:     m.ToVersion,
		Status:        entities.PipelineStatus(m.Status),
		Stages:        m.Stages,
		DryRun:        m.DryRun,
		ErrorMessage:  m.ErrorMessage,
		Rollback:      m.Rollback,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
	}
}

func taskFromEntity(t *entities.ImplementationTask) *ImplementationTaskModel {
	return &ImplementationTaskModel{
		ID:            t.ID,
		EvaluationID:  t.EvaluationID,
		ComponentName: t.ComponentName,
		TaskType:      string(t.TaskType),
		Status:        string(t.Status),
		Priority:      t.Priority,
		ScheduledAt:   t.ScheduledAt,
	}
}

func (m *ImplementationTaskModel) toEntity() entities.ImplementationTask {
	return entities.ImplementationTask{
		ID:            m.ID,
		EvaluationID:  m.EvaluationID,
		ComponentName: m.ComponentName,
		TaskType:      entities.TaskType(m.TaskType),
		Status:        entities.TaskStatus(m.Status),
		Priority:      m.Priority,
		ScheduledAt:   m.ScheduledAt,
	}
}
