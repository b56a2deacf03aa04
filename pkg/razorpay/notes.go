package razorpay

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Notes is the free-form metadata map attached to gateway entities. The
// gateway sends an empty JSON array instead of an object when no notes were
// set, and numbers where the caller passed numbers; both are normalised to
// strings here.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || data[0] == '[' {
		*n = Notes{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(Notes, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	*n = out
	return nil
}

// Get returns the first non-empty value among keys.
func (n Notes) Get(keys ...string) string {
	for _, k := range keys {
		if v := n[k]; v != "" {
			return v
		}
	}
	return ""
}

// Note keys the ledger writes on orders and subscriptions it creates. Orders
// carry plan_name and subscriptions carry plan.
const (
	NoteUserID    = "user_id"
	NotePlanName  = "plan_name"
	NotePlan      = "plan"
	NoteAddonType = "addon_type"
	NoteQuantity  = "quantity"
)
