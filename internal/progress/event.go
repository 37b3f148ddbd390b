// Package progress defines the event structures emitted during a run.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart      Stage = "RUN_START"
	StageRunDone       Stage = "RUN_DONE"
	StageItemScheduled Stage = "ITEM_SCHEDULED"
	StageItemDropped   Stage = "ITEM_DROPPED"
	StageItemDone      Stage = "ITEM_DONE"
	StageItemFailed    Stage = "ITEM_FAILED"
	StageItemCancelled Stage = "ITEM_CANCELLED"
	StageProbe         Stage = "PROBE"
	StageSubmitOK      Stage = "SUBMIT_OK"
	StageSubmitRetry   Stage = "SUBMIT_RETRY"
)

// Event captures a single milestone of a submission run.
type Event struct {
	// RunID uniquely identifies one orchestrator run.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle milestone occurred.
	Stage Stage
	// ItemID scopes item and submission events to a catalog item.
	ItemID int
	// ItemName is the catalog display name, when known.
	ItemName string
	// Seconds carries the submitted delta for submission events and the
	// cumulative total for ITEM_DONE.
	Seconds int
	// Remaining is the item's outstanding seconds after the event.
	Remaining int
	// Note attaches low-volume context such as error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageItemScheduled, StageItemDropped, StageItemDone, StageItemFailed,
		StageItemCancelled, StageProbe, StageSubmitOK, StageSubmitRetry:
		if e.ItemID == 0 {
			return fmt.Errorf("stage %s requires an item id", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Seconds < 0 {
		return errors.New("seconds must be >= 0")
	}
	return nil
}
