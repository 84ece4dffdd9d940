// Package pipeline implements the campaign automation state machine. A
// controller owns exactly one session and walks it from INITIATED to a
// terminal state, mirroring every stage transition and failure into the audit
// log and pushing the live campaign projection to observers after every
// mutation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

const moduleName = "pipeline"

// Stage display names used for currentStep and the audit log.
var stageNames = map[model.StepType]string{
	model.StepTypeInitialization:     "Initialization",
	model.StepTypeCreatorSearch:      "Creator Search",
	model.StepTypeContractGeneration: "Contract Generation",
	model.StepTypeOutreach:           "Outreach",
	model.StepTypeCompletion:         "Completion",
}

// Controller drives one automation session through the pipeline state
// machine. A session runs as a single sequential task; there is no internal
// parallelism, and the single-writer property comes from the
// one-running-session-per-campaign invariant, not from locks.
type Controller struct {
	session  *model.AutomationSession
	state    *model.CampaignState
	repo     repository.SessionRepository
	registry *capability.Registry
	resolver *preference.Resolver
	engine   *dispatch.Engine

	publisher        *listener.StatePublisher
	sessionListeners []listener.SessionExecutionListener
	stageListeners   []listener.StageExecutionListener
	recorder         metrics.MetricRecorder
	tracer           metrics.Tracer
	cfg              *config.AutomationConfig

	cancelled atomic.Bool
	halted    atomic.Bool
	advanceCh chan struct{}
	cancelCh  chan struct{}
	closeOnce sync.Once

	prefMu sync.Mutex
	prefs  []model.CreatorContactPreference

	// contracts holds the successfully drafted contracts, keyed by creator.
	contracts map[string]model.ContractRef
}

// ControllerDeps bundles the collaborators a controller needs.
type ControllerDeps struct {
	Repo             repository.SessionRepository
	Registry         *capability.Registry
	Resolver         *preference.Resolver
	Engine           *dispatch.Engine
	Publisher        *listener.StatePublisher
	SessionListeners []listener.SessionExecutionListener
	StageListeners   []listener.StageExecutionListener
	Recorder         metrics.MetricRecorder
	Tracer           metrics.Tracer
	Config           *config.AutomationConfig
}

// NewController creates a controller for one session.
func NewController(session *model.AutomationSession, deps ControllerDeps) *Controller {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &Controller{
		session:          session,
		state:            model.NewCampaignState(session.ID, session.CampaignID),
		repo:             deps.Repo,
		registry:         deps.Registry,
		resolver:         deps.Resolver,
		engine:           deps.Engine,
		publisher:        deps.Publisher,
		sessionListeners: deps.SessionListeners,
		stageListeners:   deps.StageListeners,
		recorder:         recorder,
		tracer:           tracer,
		cfg:              deps.Config,
		advanceCh:        make(chan struct{}, 1),
		cancelCh:         make(chan struct{}),
		contracts:        make(map[string]model.ContractRef),
	}
}

// Session returns the controller's session.
func (c *Controller) Session() *model.AutomationSession {
	return c.session
}

// State returns a snapshot of the live projection.
func (c *Controller) State() *model.CampaignState {
	c.prefMu.Lock()
	defer c.prefMu.Unlock()
	return c.state.Snapshot()
}

// Cancel requests cooperative cancellation. The flag is checked between
// fan-out items and before each stage transition; in-flight per-item
// operations finish.
func (c *Controller) Cancel() {
	if c.cancelled.CompareAndSwap(false, true) {
		logger.Infof("Cancellation requested for session '%s'.", c.session.ID)
		c.closeOnce.Do(func() { close(c.cancelCh) })
	}
}

// AdvanceManual releases a MANUAL mode session halted at CREATORS_LOADED.
// When the controller is not currently halted the call is a no-op, so a
// double advance without an intervening stage completion has no effect.
func (c *Controller) AdvanceManual() {
	if !c.halted.CompareAndSwap(true, false) {
		logger.Debugf("AdvanceManual ignored for session '%s': controller is not halted.", c.session.ID)
		return
	}
	select {
	case c.advanceCh <- struct{}{}:
	default:
	}
}

// Halted reports whether a MANUAL run is currently waiting for AdvanceManual.
func (c *Controller) Halted() bool {
	return c.halted.Load()
}

// ApplyPreferences merges operator-supplied contact preferences into the live
// projection. Stages already executed are unaffected; the next stage that
// reads contactPreference sees the latest value.
func (c *Controller) ApplyPreferences(prefs []model.CreatorContactPreference) {
	c.prefMu.Lock()
	c.prefs = prefs
	c.state.CreatorPreferences = append([]model.CreatorContactPreference{}, prefs...)
	if len(c.state.SelectedCreators) > 0 {
		c.state.SelectedCreators = c.resolver.Apply(c.state.SelectedCreators, prefs)
	}
	c.prefMu.Unlock()
	c.publish()
}

// Run executes the pipeline to a terminal state. The returned error is nil
// for COMPLETED and CANCELLED runs; FAILED runs return the fatal failure.
func (c *Controller) Run(ctx context.Context) error {
	c.session.TotalSteps = len(model.PipelineStepTypes)
	ctx, endSpan := c.tracer.StartSessionSpan(ctx, c.session)
	defer endSpan()

	for _, l := range c.sessionListeners {
		l.BeforeSession(ctx, c.session)
	}
	c.recorder.RecordSessionStart(ctx, c.session)
	defer func() {
		c.recorder.RecordSessionEnd(ctx, c.session)
		for _, l := range c.sessionListeners {
			l.AfterSession(ctx, c.session)
		}
	}()

	if err := c.runInitialization(ctx); err != nil {
		return err
	}
	if c.checkCancelled(ctx) {
		return nil
	}

	if err := c.runCreatorSearch(ctx); err != nil {
		return err
	}
	if c.checkCancelled(ctx) {
		return nil
	}

	if c.session.Mode == model.ModeManual {
		if !c.waitForAdvance(ctx) {
			c.markCancelled(ctx)
			return nil
		}
	}

	if err := c.runContractGeneration(ctx); err != nil {
		return err
	}
	if c.checkCancelled(ctx) {
		return nil
	}

	if err := c.runOutreach(ctx); err != nil {
		return err
	}
	if c.checkCancelled(ctx) {
		return nil
	}

	return c.runCompletion(ctx)
}

// --- stages ---

func (c *Controller) runInitialization(ctx context.Context) error {
	record, endSpan := c.openStage(ctx, model.StepTypeInitialization)
	defer endSpan()

	detail, failure := c.registry.GetCampaignDetail(ctx, c.session.CampaignID)
	if failure != nil {
		return c.failStage(ctx, record, failure)
	}
	record.Details["campaignName"] = detail.Name

	return c.completeStage(ctx, record)
}

func (c *Controller) runCreatorSearch(ctx context.Context) error {
	record, endSpan := c.openStage(ctx, model.StepTypeCreatorSearch)
	defer endSpan()

	creators, failure := c.registry.SearchCreators(ctx, capability.SearchCriteria{CampaignID: c.session.CampaignID})
	if failure != nil {
		return c.failStage(ctx, record, failure)
	}

	c.prefMu.Lock()
	c.state.SelectedCreators = c.resolver.Apply(creators, c.prefs)
	c.prefMu.Unlock()

	c.session.Counters.CreatorsFound = len(creators)
	record.Details["creatorsFound"] = len(creators)
	if len(creators) == 0 {
		// Zero creators is valid; later stages become no-ops.
		logger.Infof("Session '%s': creator search returned no creators.", c.session.ID)
	}

	if err := c.transition(model.SessionStatusCreatorsLoaded); err != nil {
		return c.failStage(ctx, record, err)
	}
	// Arm the manual gate before the new status becomes visible, so an
	// operator reacting to CREATORS_LOADED can never advance too early.
	if c.session.Mode == model.ModeManual {
		c.halted.Store(true)
	}
	return c.completeStage(ctx, record)
}

func (c *Controller) runContractGeneration(ctx context.Context) error {
	record, endSpan := c.openStage(ctx, model.StepTypeContractGeneration)
	defer endSpan()

	items := c.contractItems()
	result, err := c.engine.Run(ctx, model.StepTypeContractGeneration, items, c.invokeDraftContract, nil, c.cancelled.Load)
	if err != nil {
		return c.failStage(ctx, record, err)
	}

	c.prefMu.Lock()
	for _, id := range result.Order {
		outcome := result.Outcomes[id]
		if outcome.Status != dispatch.OutcomeSuccess {
			continue
		}
		ref, ok := outcome.Result.(*model.ContractRef)
		if !ok || ref == nil {
			continue
		}
		c.contracts[id] = *ref
		c.state.SentContracts = append(c.state.SentContracts, *ref)
	}
	c.prefMu.Unlock()

	c.session.Counters.ContractsGenerated += result.SuccessCount
	c.recordItemFailures(ctx, model.StepTypeContractGeneration, result)
	record.Details["draftedCount"] = result.SuccessCount
	record.Details["failedCount"] = result.FailureCount
	record.Details["skippedCount"] = len(c.state.SelectedCreators) - len(items)

	// A stopped batch closes its record but takes no forward transition;
	// the caller marks the session CANCELLED.
	if result.Stopped {
		record.Details["stopped"] = true
		return c.completeStage(ctx, record)
	}

	if err := c.transition(model.SessionStatusContractsDrafted); err != nil {
		return c.failStage(ctx, record, err)
	}
	return c.completeStage(ctx, record)
}

func (c *Controller) runOutreach(ctx context.Context) error {
	record, endSpan := c.openStage(ctx, model.StepTypeOutreach)
	defer endSpan()

	items := c.outreachItems()
	c.session.Counters.ContractsSent += len(items)

	result, err := c.engine.Run(ctx, model.StepTypeOutreach, items, c.invokeDispatchOutreach, nil, c.cancelled.Load)
	if err != nil {
		return c.failStage(ctx, record, err)
	}

	c.prefMu.Lock()
	for _, id := range result.Order {
		outcome := result.Outcomes[id]
		creator := c.findCreatorLocked(id)
		channel := model.ContactMethodNone
		if creator != nil {
			channel = creator.ContactPreference
		}
		comm := model.CommunicationRef{
			CreatorID: id,
			Channel:   channel,
			Accepted:  outcome.Status == dispatch.OutcomeSuccess,
		}
		if outcome.Status == dispatch.OutcomeSuccess {
			switch channel {
			case model.ContactMethodEmail:
				c.session.Counters.EmailsSent++
			case model.ContactMethodPhone:
				c.session.Counters.CallsMade++
			}
		} else {
			comm.ErrorMessage = outcome.ErrorMessage
		}
		c.state.Communications = append(c.state.Communications, comm)
	}
	c.prefMu.Unlock()

	c.session.Counters.CreatorsContacted += result.SuccessCount
	c.session.Counters.SuccessfulCommunications += result.SuccessCount
	c.session.Counters.FailedCommunications += result.FailureCount
	c.recordItemFailures(ctx, model.StepTypeOutreach, result)
	record.Details["dispatchedCount"] = result.SuccessCount
	record.Details["failedCount"] = result.FailureCount

	if result.Stopped {
		record.Details["stopped"] = true
		return c.completeStage(ctx, record)
	}

	if err := c.transition(model.SessionStatusOutreachDispatched); err != nil {
		return c.failStage(ctx, record, err)
	}
	return c.completeStage(ctx, record)
}

func (c *Controller) runCompletion(ctx context.Context) error {
	record, endSpan := c.openStage(ctx, model.StepTypeCompletion)
	defer endSpan()

	// Best effort; a failed campaign record update must not fail a finished run.
	if failure := c.registry.UpdateCampaign(ctx, c.session.CampaignID, capability.CampaignPatch{
		"automationStatus":  "completed",
		"creatorsContacted": c.session.Counters.CreatorsContacted,
	}); failure != nil {
		logger.Warnf("Session '%s': campaign record update failed on completion: %v", c.session.ID, failure)
		c.appendError(ctx, model.NewErrorRecord(string(failure.Kind), failure.Message, string(record.StepType)))
	}

	if err := c.completeStage(ctx, record); err != nil {
		return err
	}

	c.session.Metrics = model.ComputeReport(c.session)
	c.session.MarkAsCompleted()
	c.prefMu.Lock()
	c.state.Status = c.session.Status
	c.prefMu.Unlock()
	c.updateSession(ctx)
	c.publish()
	logger.Infof("Session '%s' for campaign '%s' completed. Contacted %d of %d creators.",
		c.session.ID, c.session.CampaignID, c.session.Counters.CreatorsContacted, c.session.Counters.CreatorsFound)
	return nil
}

// --- fan-out item construction and invokers ---

// contractItems selects creators whose contact preference is not NONE.
func (c *Controller) contractItems() []dispatch.Item {
	c.prefMu.Lock()
	defer c.prefMu.Unlock()
	items := make([]dispatch.Item, 0, len(c.state.SelectedCreators))
	for _, creator := range c.state.SelectedCreators {
		if creator.ContactPreference == model.ContactMethodNone {
			continue
		}
		items = append(items, dispatch.Item{ID: creator.ID, Payload: creator})
	}
	return items
}

// outreachItems selects creators with a successfully drafted contract.
func (c *Controller) outreachItems() []dispatch.Item {
	c.prefMu.Lock()
	defer c.prefMu.Unlock()
	items := make([]dispatch.Item, 0, len(c.contracts))
	for _, creator := range c.state.SelectedCreators {
		if _, ok := c.contracts[creator.ID]; !ok {
			continue
		}
		items = append(items, dispatch.Item{ID: creator.ID, Payload: creator})
	}
	return items
}

func (c *Controller) invokeDraftContract(ctx context.Context, item dispatch.Item) (interface{}, error) {
	ref, failure := c.registry.DraftContract(ctx, c.session.CampaignID, item.ID, c.cfg.DefaultContractTerms)
	if failure != nil {
		return nil, failure
	}
	return ref, nil
}

func (c *Controller) invokeDispatchOutreach(ctx context.Context, item dispatch.Item) (interface{}, error) {
	creator, _ := item.Payload.(model.Creator)
	message := c.renderOutreachMessage(creator)
	if failure := c.registry.DispatchOutreach(ctx, item.ID, message, c.session.CampaignID); failure != nil {
		return nil, failure
	}
	return nil, nil
}

func (c *Controller) renderOutreachMessage(creator model.Creator) string {
	message := c.cfg.OutreachMessageTemplate
	message = strings.ReplaceAll(message, "{{creator}}", creator.Name)
	message = strings.ReplaceAll(message, "{{campaign}}", c.session.CampaignID)
	return message
}

// --- stage bookkeeping ---

func (c *Controller) openStage(ctx context.Context, stepType model.StepType) (*model.StepRecord, func()) {
	record := model.NewStepRecord(stepType, stageNames[stepType])
	c.session.CurrentStep = record.StepName
	for _, l := range c.stageListeners {
		l.BeforeStage(ctx, c.session.ID, record)
	}
	c.recorder.RecordStageStart(ctx, c.session.ID, stepType)
	_, endSpan := c.tracer.StartStageSpan(ctx, c.session.ID, stepType)
	return record, endSpan
}

// completeStage closes the record, appends it to the audit log and publishes
// the refreshed projection.
func (c *Controller) completeStage(ctx context.Context, record *model.StepRecord) error {
	record.Complete()
	c.session.CompletedSteps++
	return c.closeStage(ctx, record)
}

// failStage closes the record as FAILED, records the fatal error and moves
// the session to FAILED.
func (c *Controller) failStage(ctx context.Context, record *model.StepRecord, cause error) error {
	record.Fail(cause)
	errRecord := model.NewErrorRecord(errorTypeOf(cause), cause.Error(), string(record.StepType))
	errRecord.StackTrace = exception.StackOf(cause)
	c.appendError(ctx, errRecord)
	c.tracer.RecordError(ctx, moduleName, cause)

	if err := c.closeStage(ctx, record); err != nil {
		logger.Errorf("Session '%s': failed to persist FAILED step record: %v", c.session.ID, err)
	}

	c.session.MarkAsFailed()
	c.prefMu.Lock()
	c.state.Status = c.session.Status
	c.prefMu.Unlock()
	c.updateSession(ctx)
	c.publish()
	return exception.New(moduleName, fmt.Sprintf("stage '%s' failed", record.StepName), cause, exception.KindFatal)
}

func (c *Controller) closeStage(ctx context.Context, record *model.StepRecord) error {
	if err := c.repo.AppendStep(ctx, c.session.ID, record); err != nil {
		logger.Errorf("Session '%s': failed to append step record '%s': %v", c.session.ID, record.StepName, err)
		return exception.New(moduleName, "failed to append step record", err, exception.KindFatal)
	}
	c.session.StepLog = c.session.StepLog.Append(record)

	c.recorder.RecordStageEnd(ctx, c.session.ID, record)
	for _, l := range c.stageListeners {
		l.AfterStage(ctx, c.session.ID, record)
	}

	c.prefMu.Lock()
	c.state.Status = c.session.Status
	c.prefMu.Unlock()
	c.updateSession(ctx)
	c.publish()
	return nil
}

// recordItemFailures mirrors per-item fan-out failures into the error log.
// Partial failures never fail the stage.
func (c *Controller) recordItemFailures(ctx context.Context, stepType model.StepType, result *dispatch.Result) {
	for _, id := range result.Order {
		outcome := result.Outcomes[id]
		if outcome.Status != dispatch.OutcomeFailure {
			continue
		}
		errRecord := model.NewErrorRecord("DISPATCH_FAILURE", outcome.ErrorMessage, string(stepType))
		errRecord.Context = model.Details{"creatorId": id}
		c.appendError(ctx, errRecord)
	}
}

func (c *Controller) appendError(ctx context.Context, record *model.ErrorRecord) {
	if err := c.repo.AppendError(ctx, c.session.ID, record); err != nil {
		logger.Errorf("Session '%s': failed to append error record: %v", c.session.ID, err)
	}
	c.session.ErrorLog = c.session.ErrorLog.Append(record)
}

func (c *Controller) updateSession(ctx context.Context) {
	if err := c.repo.UpdateSession(ctx, c.session); err != nil {
		logger.Errorf("Session '%s': failed to update session record: %v", c.session.ID, err)
	}
}

func (c *Controller) transition(next model.SessionStatus) error {
	if err := c.session.TransitionTo(next); err != nil {
		return exception.New(moduleName, "invalid pipeline transition", err, exception.KindFatal)
	}
	return nil
}

func (c *Controller) publish() {
	if c.publisher == nil {
		return
	}
	c.prefMu.Lock()
	snapshot := c.state.Snapshot()
	c.prefMu.Unlock()
	c.publisher.Publish(snapshot)
}

func (c *Controller) findCreatorLocked(creatorID string) *model.Creator {
	for i := range c.state.SelectedCreators {
		if c.state.SelectedCreators[i].ID == creatorID {
			return &c.state.SelectedCreators[i]
		}
	}
	return nil
}

// --- cancellation and manual gating ---

// checkCancelled consults the cooperative cancel flag between stages.
func (c *Controller) checkCancelled(ctx context.Context) bool {
	if !c.cancelled.Load() {
		return false
	}
	c.markCancelled(ctx)
	return true
}

func (c *Controller) markCancelled(ctx context.Context) {
	c.halted.Store(false)
	if c.session.Status.IsTerminal() {
		return
	}
	c.session.MarkAsCancelled()
	c.prefMu.Lock()
	c.state.Status = c.session.Status
	c.prefMu.Unlock()
	c.updateSession(ctx)
	c.publish()
	logger.Infof("Session '%s' cancelled.", c.session.ID)
}

// waitForAdvance halts a MANUAL run at CREATORS_LOADED until the operator
// advances, the run is cancelled, or the context ends. It reports whether
// the run may proceed. The gate itself is armed by the creator search stage,
// before CREATORS_LOADED becomes visible.
func (c *Controller) waitForAdvance(ctx context.Context) bool {
	logger.Infof("Session '%s' halted at %s awaiting manual advance.", c.session.ID, model.SessionStatusCreatorsLoaded)
	select {
	case <-c.advanceCh:
		return true
	case <-c.cancelCh:
		c.halted.Store(false)
		return false
	case <-ctx.Done():
		c.halted.Store(false)
		return false
	}
}

// errorTypeOf derives the errorType label of an ErrorRecord from the cause.
func errorTypeOf(err error) string {
	if f, ok := err.(*capability.Failure); ok {
		return string(f.Kind)
	}
	return string(exception.KindOf(err))
}
