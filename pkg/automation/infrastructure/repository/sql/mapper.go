package sql

import (
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// toSessionEntity converts a domain session into its database representation.
func toSessionEntity(s *model.AutomationSession) *SessionEntity {
	return &SessionEntity{
		ID:             s.ID,
		CampaignID:     s.CampaignID,
		UserID:         s.UserID,
		Mode:           s.Mode.String(),
		Status:         s.Status.String(),
		TotalSteps:     s.TotalSteps,
		CompletedSteps: s.CompletedSteps,
		CurrentStep:    s.CurrentStep,

		CreatorsFound:            s.Counters.CreatorsFound,
		CreatorsContacted:        s.Counters.CreatorsContacted,
		ContractsGenerated:       s.Counters.ContractsGenerated,
		ContractsSent:            s.Counters.ContractsSent,
		EmailsSent:               s.Counters.EmailsSent,
		CallsMade:                s.Counters.CallsMade,
		SuccessfulCommunications: s.Counters.SuccessfulCommunications,
		FailedCommunications:     s.Counters.FailedCommunications,

		StepLog:  s.StepLog,
		ErrorLog: s.ErrorLog,
		Metrics:  s.Metrics,

		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		LastUpdated: s.LastUpdated,
		Version:     s.Version,
	}
}

// toDomainSession converts a database row into a domain session.
func toDomainSession(e *SessionEntity) *model.AutomationSession {
	return &model.AutomationSession{
		ID:             e.ID,
		CampaignID:     e.CampaignID,
		UserID:         e.UserID,
		Mode:           model.SessionMode(e.Mode),
		Status:         model.SessionStatus(e.Status),
		TotalSteps:     e.TotalSteps,
		CompletedSteps: e.CompletedSteps,
		CurrentStep:    e.CurrentStep,
		Counters: model.SessionCounters{
			CreatorsFound:            e.CreatorsFound,
			CreatorsContacted:        e.CreatorsContacted,
			ContractsGenerated:       e.ContractsGenerated,
			ContractsSent:            e.ContractsSent,
			EmailsSent:               e.EmailsSent,
			CallsMade:                e.CallsMade,
			SuccessfulCommunications: e.SuccessfulCommunications,
			FailedCommunications:     e.FailedCommunications,
		},
		StepLog:     e.StepLog,
		ErrorLog:    e.ErrorLog,
		Metrics:     e.Metrics,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		LastUpdated: e.LastUpdated,
		Version:     e.Version,
	}
}
