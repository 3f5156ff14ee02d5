package journal

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/qrorder/internal/canon"
	"github.com/roach88/qrorder/internal/order"
)

// eventRecord mirrors order.Event.Payload for decoding.
type eventRecord struct {
	Seq       int64    `json:"seq"`
	Type      string   `json:"type"`
	ItemID    string   `json:"item_id"`
	Quantity  int      `json:"quantity"`
	Token     string   `json:"token"`
	Cause     string   `json:"cause"`
	ItemIDs   []string `json:"item_ids"`
	ItemNames []string `json:"item_names"`
	Code      string   `json:"code"`
}

func marshalEvent(e order.Event) (string, error) {
	data, err := canon.Marshal(e.Payload())
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func unmarshalEvent(payload string) (order.Event, error) {
	var rec eventRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return order.Event{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	cause := order.CauseNone
	if rec.Cause != "" {
		cause = order.Cause(rec.Cause)
	}
	return order.Event{
		Seq:       rec.Seq,
		Type:      order.EventType(rec.Type),
		ItemID:    rec.ItemID,
		Quantity:  rec.Quantity,
		Token:     rec.Token,
		Cause:     cause,
		ItemIDs:   rec.ItemIDs,
		ItemNames: rec.ItemNames,
		Code:      order.ErrorCode(rec.Code),
	}, nil
}
