package models

import "time"

// Intent is the closed set of request kinds the classifier may return.
type Intent string

const (
	IntentCheck   Intent = "Check"
	IntentBook    Intent = "Book"
	IntentChange  Intent = "Change"
	IntentCancel  Intent = "Cancel"
	IntentMine    Intent = "Mine"
	IntentUnknown Intent = "Unknown"
)

// ParseIntent maps classifier output onto the closed set; anything else is Unknown.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentCheck, IntentBook, IntentChange, IntentCancel, IntentMine:
		return Intent(s)
	}
	return IntentUnknown
}

// Params are the structured slots handed to an action.
type Params map[string]any

// RouteOutput is the classifier's structured answer.
type RouteOutput struct {
	Intent             string `json:"intent"`
	Params             Params `json:"params"`
	NeedMoreInfo       bool   `json:"need_more"`
	ClarifyingQuestion string `json:"ask_user"`
}

// BookSlots is the extraction schema for booking requests.
type BookSlots struct {
	Building string `json:"building"`
	Floor    *int   `json:"floor"`
	Room     string `json:"room"`
	UserName string `json:"user_name"`
	Purpose  string `json:"purpose"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// CheckSlots is the extraction schema for availability requests.
type CheckSlots struct {
	Building string `json:"building"`
	Floor    *int   `json:"floor"`
	Room     string `json:"room"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// ActionResult is the structured result of one action invocation. Field presence follows
// the action that produced it.
type ActionResult struct {
	OK                    bool                 `json:"ok"`
	Error                 string               `json:"error,omitempty"`
	Code                  ErrorCode            `json:"code,omitempty"`
	Message               string               `json:"message,omitempty"`
	Available             *bool                `json:"available,omitempty"`
	ConflictReservationID string               `json:"conflict_reservation_id,omitempty"`
	Suggestions           []Slot               `json:"suggestions,omitempty"`
	ReservationID         string               `json:"reservation_id,omitempty"`
	Count                 *int                 `json:"count,omitempty"`
	Items                 []ReservationSummary `json:"items,omitempty"`
	Buildings             map[string]int       `json:"buildings,omitempty"`
	BuildingID            int                  `json:"building_id,omitempty"`
	FloorID               int                  `json:"floor_id,omitempty"`
	Floors                map[int]int          `json:"floors,omitempty"`
	Rooms                 []RoomEntry          `json:"rooms,omitempty"`
}

// FailureResult folds an error into a structured failure. Errors outside the domain
// taxonomy come from storage or another collaborator and are tagged ExternalServiceFailure.
func FailureResult(err error) *ActionResult {
	code := CodeOf(err)
	if code == "" {
		code = ExternalServiceFailure
	}
	return &ActionResult{OK: false, Error: MessageOf(err), Code: code}
}

// AIRequest is the body of POST /run.
type AIRequest struct {
	Query string `json:"query" binding:"required"`
}

// AIResponse is what the run endpoint returns.
type AIResponse struct {
	RunID       string `json:"run_id"`
	FinalAnswer string `json:"final_answer"`
	Success     bool   `json:"success"`
}

// RunRecord is the persisted trace of one workflow run.
type RunRecord struct {
	RunID              string        `json:"run_id"`
	Query              string        `json:"query"`
	Intent             Intent        `json:"intent"`
	Params             Params        `json:"params"`
	NeedMoreInfo       bool          `json:"need_more"`
	ClarifyingQuestion string        `json:"ask_user"`
	Plan               []string      `json:"plan"`
	Result             *ActionResult `json:"tool_result"`
	FinalAnswer        string        `json:"final_answer"`
	Trace              []string      `json:"trace"`
	CreatedAt          time.Time     `json:"created_at"`
}
