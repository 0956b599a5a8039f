package stream

import (
	"encoding/json"
	"fmt"
)

// Values cross process boundaries as tagged JSON objects so the
// variant survives the trip: {"t":"int","v":42}, {"t":"ipv4",
// "v":"10.0.0.1"} and so on. Records marshal as plain JSON objects of
// tagged values. Sources, sinks and the capture archive all share this
// form.

type valueJSON struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return json.Marshal(valueJSON{T: "empty"})
	case KindFloat:
		return tagJSON("float", v.f)
	case KindInt:
		return tagJSON("int", v.i)
	case KindIPv4:
		return tagJSON("ipv4", v.ip.String())
	case KindMAC:
		return tagJSON("mac", v.String())
	}
	return nil, fmt.Errorf("marshal value: unknown kind %d", v.kind)
}

func tagJSON(t string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{T: t, V: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	switch raw.T {
	case "empty":
		*v = Value{}
		return nil
	case "float":
		var f float64
		if err := json.Unmarshal(raw.V, &f); err != nil {
			return fmt.Errorf("unmarshal float value: %w", err)
		}
		*v = Float(f)
		return nil
	case "int":
		var i int64
		if err := json.Unmarshal(raw.V, &i); err != nil {
			return fmt.Errorf("unmarshal int value: %w", err)
		}
		*v = Int(i)
		return nil
	case "ipv4":
		var s string
		if err := json.Unmarshal(raw.V, &s); err != nil {
			return fmt.Errorf("unmarshal ipv4 value: %w", err)
		}
		parsed, err := ParseIPv4(s)
		if err != nil {
			return fmt.Errorf("unmarshal ipv4 value: %w", err)
		}
		*v = parsed
		return nil
	case "mac":
		var s string
		if err := json.Unmarshal(raw.V, &s); err != nil {
			return fmt.Errorf("unmarshal mac value: %w", err)
		}
		parsed, err := ParseMAC(s)
		if err != nil {
			return fmt.Errorf("unmarshal mac value: %w", err)
		}
		*v = parsed
		return nil
	}
	return fmt.Errorf("unmarshal value: unknown type tag %q", raw.T)
}
