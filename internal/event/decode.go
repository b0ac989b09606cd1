package event

import "encoding/json"

// DecodePayload converts an event payload into T. Payloads published on the
// in-process bus already hold T and are returned as-is. Raw JSON (bytes or
// json.RawMessage, as read back from the journal) is unmarshaled directly;
// anything else, such as a map from a decoded SSE frame, is re-encoded first.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case json.RawMessage:
		return result, json.Unmarshal(v, &result)
	case []byte:
		return result, json.Unmarshal(v, &result)
	}
	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}
