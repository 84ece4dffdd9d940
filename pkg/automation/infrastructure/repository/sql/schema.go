// Package sql implements the session repository on a relational audit store
// through GORM. Step and error logs are stored as JSON columns and rewritten
// whole on every append; session rows use optimistic locking on the version
// column.
package sql

import (
	"time"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// SessionEntity is the database representation of an automation session.
type SessionEntity struct {
	ID             string `gorm:"column:id;primaryKey"`
	CampaignID     string `gorm:"column:campaign_id;index"`
	UserID         string `gorm:"column:user_id"`
	Mode           string `gorm:"column:mode"`
	Status         string `gorm:"column:status;index"`
	TotalSteps     int    `gorm:"column:total_steps"`
	CompletedSteps int    `gorm:"column:completed_steps"`
	CurrentStep    string `gorm:"column:current_step"`

	CreatorsFound            int `gorm:"column:creators_found"`
	CreatorsContacted        int `gorm:"column:creators_contacted"`
	ContractsGenerated       int `gorm:"column:contracts_generated"`
	ContractsSent            int `gorm:"column:contracts_sent"`
	EmailsSent               int `gorm:"column:emails_sent"`
	CallsMade                int `gorm:"column:calls_made"`
	SuccessfulCommunications int `gorm:"column:successful_communications"`
	FailedCommunications     int `gorm:"column:failed_communications"`

	StepLog  model.StepLog  `gorm:"column:step_log;type:json"`
	ErrorLog model.ErrorLog `gorm:"column:error_log;type:json"`
	Metrics  *model.Report  `gorm:"column:metrics;type:json"`

	StartTime   time.Time  `gorm:"column:start_time"`
	EndTime     *time.Time `gorm:"column:end_time"`
	LastUpdated time.Time  `gorm:"column:last_updated"`
	Version     int        `gorm:"column:version"`
}

// TableName specifies the table name for the SessionEntity.
func (SessionEntity) TableName() string {
	return "automation_session"
}
