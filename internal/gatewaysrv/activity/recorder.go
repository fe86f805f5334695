// Package activity writes the gateway's audit trail: one row per
// proxied action and per session revocation, with the specifics kept
// as a JSON detail blob on the row.
package activity

import (
	"context"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// Event is one auditable gateway occurrence. Detail is marshaled to
// JSON as-is; a nil Detail stores an empty object.
type Event struct {
	UserID string
	Action string
	Status int
	Detail any
}

// ForwardDetail is the Detail payload for proxied actions.
type ForwardDetail struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RunID      string `json:"run_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RevocationDetail is the Detail payload for session revocations.
type RevocationDetail struct {
	SessionID string `json:"session_id,omitempty"`
	Revoked   int64  `json:"revoked"`
}

// Recorder appends audit entries. Failures are logged and swallowed:
// auditing must not break the flows it observes.
type Recorder struct {
	store db.ActivityStore
}

func NewRecorder(store db.ActivityStore) *Recorder {
	return &Recorder{store: store}
}

// Record writes one audit row. Events without an action are dropped.
func (r *Recorder) Record(ctx context.Context, event *Event) {
	if r == nil || event == nil || event.Action == "" {
		return
	}
	detail := event.Detail
	if detail == nil {
		detail = struct{}{}
	}
	blob, err := json.Marshal(detail)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", event.Action).Msg("failed to marshal activity detail")
		return
	}

	entry := &models.ActivityEntry{
		ActivityID: uuid.New(),
		UserID:     event.UserID,
		Action:     event.Action,
		StatusCode: event.Status,
	}
	if err := entry.Detail.Set(blob); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", event.Action).Msg("failed to set activity detail")
		return
	}
	if apperr := r.store.InsertActivity(ctx, entry); apperr != nil {
		log.Ctx(ctx).Error().Err(apperr).Str("action", event.Action).Msg("failed to record activity")
	}
}
