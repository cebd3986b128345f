package ai

import (
	"context"
	"time"

	"meetingroom/models"
)

// NLU is the natural-language capability the workflow depends on. Every method may fail;
// callers treat failures as expected.
type NLU interface {
	// Classify returns the intent, coarse params and whether more information is needed.
	// today anchors relative dates, as in the extraction calls.
	Classify(ctx context.Context, query string, today time.Time) (*models.RouteOutput, error)
	// ExtractBookSlots extracts the booking schema. today anchors relative dates.
	ExtractBookSlots(ctx context.Context, query string, today time.Time) (*models.BookSlots, error)
	// ExtractCheckSlots extracts the availability schema.
	ExtractCheckSlots(ctx context.Context, query string, today time.Time) (*models.CheckSlots, error)
	// Summarize turns the structured params and result into the final answer.
	Summarize(ctx context.Context, params models.Params, result *models.ActionResult) (string, error)
}
