package agent

import (
	"context"
	"strconv"
	"strings"
	"time"

	"meetingroom/models"
	"meetingroom/services/actions"
	ai "meetingroom/services/intelligence"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is one node of the intent resolution pipeline.
type State string

const (
	StateInit         State = "Init"
	StateClassify     State = "Classify"
	StateExtractSlots State = "ExtractSlots"
	StateClarify      State = "Clarify"
	StatePlan         State = "Plan"
	StateExecute      State = "Execute"
	StateReport       State = "Report"
	StateEnd          State = "End"
)

const (
	FallbackAnswer       = "요청을 이해하지 못했어요. (가능: 조회/예약/변경/취소/내예약)"
	classifyFailedAsk    = "요청을 이해하지 못했습니다. 원하시는 작업(조회/예약/변경/취소/내예약)과 필요한 정보를 다시 알려주세요."
	bookExtractFailed    = "예약에 필요한 정보를 파악하지 못했습니다. 건물, 층, 방, 시간, 예약자, 제목을 알려주세요."
	checkExtractFailed   = "조회할 건물, 층, 방, 시간대를 알려주세요."
	defaultClarifyingAsk = "필요한 정보를 알려주세요."
	missingPrefix        = "다음 정보를 알려주세요: "
)

// planTable maps each actionable intent to exactly one action.
var planTable = map[models.Intent]string{
	models.IntentCheck:  actions.CheckAvailability,
	models.IntentBook:   actions.CreateBooking,
	models.IntentChange: actions.UpdateBooking,
	models.IntentCancel: actions.CancelBooking,
	models.IntentMine:   actions.GetUserReservations,
}

// Executor runs a named action.
type Executor interface {
	Invoke(ctx context.Context, name string, params models.Params) (*models.ActionResult, error)
}

// Workflow turns one query into at most one action invocation plus an answer. A
// Workflow is shared; all per-run state lives in the run's RunRecord.
type Workflow struct {
	NLU     ai.NLU
	Actions Executor
	Runs    ai.RunStore
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewWorkflow(nlu ai.NLU, executor Executor, runs ai.RunStore, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{NLU: nlu, Actions: executor, Runs: runs, Logger: logger, Now: time.Now}
}

// Run executes the pipeline to completion. It only fails when ctx is done; every NLU
// and action failure ends up in the record.
func (w *Workflow) Run(ctx context.Context, query string) (*models.RunRecord, error) {
	rec := &models.RunRecord{
		RunID:     uuid.NewString(),
		Query:     query,
		CreatedAt: w.Now(),
	}
	logger := w.Logger.With(zap.String("runID", rec.RunID))

	for state := StateInit; state != StateEnd; {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		rec.Trace = append(rec.Trace, string(state))
		logger.Debug("workflow step", zap.String("state", string(state)))
		state = w.step(ctx, logger, state, rec)
	}
	rec.Trace = append(rec.Trace, string(StateEnd))

	if w.Runs != nil {
		if err := w.Runs.Save(ctx, rec); err != nil {
			logger.Warn("failed to save run record", zap.Error(err))
		}
	}
	return rec, nil
}

func (w *Workflow) step(ctx context.Context, logger *zap.Logger, state State, rec *models.RunRecord) State {
	switch state {
	case StateInit:
		rec.Intent = models.IntentUnknown
		rec.Params = models.Params{}
		rec.NeedMoreInfo = false
		rec.ClarifyingQuestion = ""
		rec.Plan = nil
		rec.Result = nil
		rec.FinalAnswer = ""
		return StateClassify
	case StateClassify:
		return w.classify(ctx, logger, rec)
	case StateExtractSlots:
		return w.extractSlots(ctx, logger, rec)
	case StateClarify:
		rec.FinalAnswer = rec.ClarifyingQuestion
		if rec.FinalAnswer == "" {
			rec.FinalAnswer = defaultClarifyingAsk
		}
		return StateEnd
	case StatePlan:
		action, ok := planTable[rec.Intent]
		if !ok {
			rec.FinalAnswer = FallbackAnswer
			return StateEnd
		}
		rec.Plan = []string{action}
		return StateExecute
	case StateExecute:
		result, err := w.Actions.Invoke(ctx, rec.Plan[0], rec.Params)
		if err != nil {
			logger.Info("action failed", zap.String("action", rec.Plan[0]), zap.Error(err))
			result = models.FailureResult(err)
		}
		rec.Result = result
		return StateReport
	case StateReport:
		answer, err := w.NLU.Summarize(ctx, rec.Params, rec.Result)
		if err != nil {
			logger.Warn("summarization failed", zap.Error(err))
			answer = ""
		}
		rec.FinalAnswer = answer
		return StateEnd
	}
	return StateEnd
}

func (w *Workflow) classify(ctx context.Context, logger *zap.Logger, rec *models.RunRecord) State {
	out, err := w.NLU.Classify(ctx, rec.Query, models.Civil(w.Now()))
	if err != nil {
		logger.Warn("classification failed", zap.Error(err))
		rec.NeedMoreInfo = true
		rec.ClarifyingQuestion = classifyFailedAsk
		return StateClarify
	}

	rec.Intent = models.ParseIntent(out.Intent)
	rec.Params = stripEmpty(out.Params)
	rec.NeedMoreInfo = out.NeedMoreInfo
	rec.ClarifyingQuestion = out.ClarifyingQuestion

	switch {
	case rec.Intent == models.IntentBook || rec.Intent == models.IntentCheck:
		return StateExtractSlots
	case rec.NeedMoreInfo:
		return StateClarify
	}
	return StatePlan
}

func (w *Workflow) extractSlots(ctx context.Context, logger *zap.Logger, rec *models.RunRecord) State {
	today := models.Civil(w.Now())

	var missing []string
	if rec.Intent == models.IntentBook {
		slots, err := w.NLU.ExtractBookSlots(ctx, rec.Query, today)
		if err != nil {
			logger.Warn("book slot extraction failed", zap.Error(err))
			rec.NeedMoreInfo = true
			rec.ClarifyingQuestion = bookExtractFailed
			return StateClarify
		}
		rec.Params = stripEmpty(models.Params{
			"building":  slots.Building,
			"floor":     floorParam(slots.Floor),
			"room":      slots.Room,
			"user_name": slots.UserName,
			"purpose":   slots.Purpose,
			"title":     slots.Title,
			"start":     slots.Start,
			"end":       slots.End,
		})
		missing = missingSlots(slots.Building, slots.Room, &slots.UserName, &slots.Title, slots.Start, slots.End)
	} else {
		slots, err := w.NLU.ExtractCheckSlots(ctx, rec.Query, today)
		if err != nil {
			logger.Warn("check slot extraction failed", zap.Error(err))
			rec.NeedMoreInfo = true
			rec.ClarifyingQuestion = checkExtractFailed
			return StateClarify
		}
		rec.Params = stripEmpty(models.Params{
			"building": slots.Building,
			"floor":    floorParam(slots.Floor),
			"room":     slots.Room,
			"start":    slots.Start,
			"end":      slots.End,
		})
		missing = missingSlots(slots.Building, slots.Room, nil, nil, slots.Start, slots.End)
	}

	rec.NeedMoreInfo = len(missing) > 0
	if rec.NeedMoreInfo {
		rec.ClarifyingQuestion = missingPrefix + strings.Join(missing, ", ")
		return StateClarify
	}
	rec.ClarifyingQuestion = ""
	return StatePlan
}

// missingSlots lists absent required fields in fixed order. userName and title are nil
// for schemas that do not carry them.
func missingSlots(building, room string, userName, title *string, start, end string) []string {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	var missing []string
	if blank(building) {
		missing = append(missing, "건물")
	}
	if blank(room) {
		missing = append(missing, "방")
	}
	if userName != nil && blank(*userName) {
		missing = append(missing, "사용자 이름")
	}
	if title != nil && blank(*title) {
		missing = append(missing, "제목")
	}
	if blank(start) || blank(end) {
		missing = append(missing, "시작/종료 시간")
	}
	return missing
}

// floorParam renders an extracted floor number as a name reference, so it is never
// mistaken for a floor id.
func floorParam(floor *int) any {
	if floor == nil {
		return nil
	}
	return strconv.Itoa(*floor)
}

func stripEmpty(params models.Params) models.Params {
	out := models.Params{}
	for k, v := range params {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(val) == "" {
				continue
			}
		}
		out[k] = v
	}
	return out
}
