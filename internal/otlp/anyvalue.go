package otlp

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
)

// flattenAttributes merges OTLP KeyValue pairs into a string map,
// adapted from the teacher's internal/storage/flatten.go (moved up into
// the normalization layer so both backends and both transports share
// one conversion path instead of re-flattening per backend).
func flattenAttributes(kvs []*commonv1.KeyValue) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if kv != nil && kv.Key != "" {
			out[kv.Key] = anyValueToString(kv.Value)
		}
	}
	return out
}

// mergeAttributes merges log/span attributes over resource attributes;
// on key collision the more specific (second) map wins, per spec.md
// §4.1's "on key collision, log attribute wins".
func mergeAttributes(resource, specific map[string]string) map[string]string {
	if len(resource) == 0 {
		return specific
	}
	if len(specific) == 0 {
		return resource
	}
	out := make(map[string]string, len(resource)+len(specific))
	for k, v := range resource {
		out[k] = v
	}
	for k, v := range specific {
		out[k] = v
	}
	return out
}

func serviceName(resourceAttrs map[string]string) string {
	if s, ok := resourceAttrs["service.name"]; ok && s != "" {
		return s
	}
	return "unknown"
}

func anyValueToString(v *commonv1.AnyValue) string {
	if v == nil {
		return ""
	}
	switch val := v.Value.(type) {
	case *commonv1.AnyValue_StringValue:
		return val.StringValue
	case *commonv1.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10)
	case *commonv1.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64)
	case *commonv1.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue)
	case *commonv1.AnyValue_BytesValue:
		return hex.EncodeToString(val.BytesValue)
	case *commonv1.AnyValue_ArrayValue:
		return arrayToJSON(val.ArrayValue)
	case *commonv1.AnyValue_KvlistValue:
		return kvlistToJSON(val.KvlistValue)
	default:
		return ""
	}
}

func arrayToJSON(arr *commonv1.ArrayValue) string {
	if arr == nil || len(arr.Values) == 0 {
		return "[]"
	}
	values := make([]any, len(arr.Values))
	for i, v := range arr.Values {
		values[i] = anyValueToInterface(v)
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func kvlistToJSON(kvl *commonv1.KeyValueList) string {
	if kvl == nil || len(kvl.Values) == 0 {
		return "{}"
	}
	m := make(map[string]any, len(kvl.Values))
	for _, kv := range kvl.Values {
		if kv != nil {
			m[kv.Key] = anyValueToInterface(kv.Value)
		}
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func anyValueToInterface(v *commonv1.AnyValue) any {
	if v == nil {
		return nil
	}
	switch val := v.Value.(type) {
	case *commonv1.AnyValue_StringValue:
		return val.StringValue
	case *commonv1.AnyValue_IntValue:
		return val.IntValue
	case *commonv1.AnyValue_DoubleValue:
		return val.DoubleValue
	case *commonv1.AnyValue_BoolValue:
		return val.BoolValue
	case *commonv1.AnyValue_BytesValue:
		return hex.EncodeToString(val.BytesValue)
	case *commonv1.AnyValue_ArrayValue:
		if val.ArrayValue == nil {
			return []any{}
		}
		arr := make([]any, len(val.ArrayValue.Values))
		for i, v := range val.ArrayValue.Values {
			arr[i] = anyValueToInterface(v)
		}
		return arr
	case *commonv1.AnyValue_KvlistValue:
		if val.KvlistValue == nil {
			return map[string]any{}
		}
		m := make(map[string]any, len(val.KvlistValue.Values))
		for _, kv := range val.KvlistValue.Values {
			if kv != nil {
				m[kv.Key] = anyValueToInterface(kv.Value)
			}
		}
		return m
	default:
		return nil
	}
}

func hexEncode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return hex.EncodeToString(b)
}
