package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Payload(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  map[string]any
	}{
		{
			name:  "added",
			event: Event{Seq: 1, Type: EventAdded, ItemID: "t1", Quantity: 2},
			want:  map[string]any{"seq": int64(1), "type": "Added", "item_id": "t1", "quantity": 2},
		},
		{
			name:  "decremented to zero keeps quantity",
			event: Event{Seq: 2, Type: EventDecremented, ItemID: "t1"},
			want:  map[string]any{"seq": int64(2), "type": "Decremented", "item_id": "t1", "quantity": 0},
		},
		{
			name:  "invalidated",
			event: Event{Seq: 3, Type: EventInvalidated, Token: "tok", Cause: CauseCartChanged},
			want:  map[string]any{"seq": int64(3), "type": "Invalidated", "token": "tok", "cause": "CartChanged"},
		},
		{
			name:  "stock out",
			event: Event{Seq: 4, Type: EventStockOut, ItemIDs: []string{"t1"}, ItemNames: []string{"Uni T-shirt"}},
			want: map[string]any{
				"seq": int64(4), "type": "StockOut",
				"item_ids": []string{"t1"}, "item_names": []string{"Uni T-shirt"},
			},
		},
		{
			name:  "rejected",
			event: Event{Seq: 5, Type: EventRejected, Code: CodeEmptyCart},
			want:  map[string]any{"seq": int64(5), "type": "Rejected", "code": "EMPTY_CART"},
		},
		{
			name:  "cause none omitted",
			event: Event{Seq: 6, Type: EventCommitted, Token: "tok", Cause: CauseNone},
			want:  map[string]any{"seq": int64(6), "type": "Committed", "token": "tok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Payload())
		})
	}
}

func TestError_Format(t *testing.T) {
	err := newError(CodeItemUnavailable, "t1", "%s is sold out", "Uni T-shirt")
	assert.Equal(t, "ITEM_UNAVAILABLE: Uni T-shirt is sold out (item=t1)", err.Error())
	assert.Equal(t, "EMPTY_CART: cart is empty", ErrEmptyCart.Error())
	assert.Equal(t, CodeItemUnavailable, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(assert.AnError))
}
