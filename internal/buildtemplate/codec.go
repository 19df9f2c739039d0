package buildtemplate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Dictionary keys of the persisted form.
const (
	KeyID             = "id"
	KeyProjectName    = "project_name"
	KeyName           = "name"
	KeyScheme         = "scheme"
	KeySchedule       = "schedule"
	KeyCleaningPolicy = "cleaning_policy"
	KeyTriggers       = "triggers"
	KeyTestingDevices = "testing_devices"
	KeyDeviceFilter   = "device_filter"
	KeyPlatformType   = "platform_type"
	KeyShouldAnalyze  = "should_analyze"
	KeyShouldTest     = "should_test"
	KeyShouldArchive  = "should_archive"
)

// Encode returns the dictionary form of t. Unset optional fields and nil
// slices are left out of the dictionary rather than written as null.
func (t *BuildTemplate) Encode() map[string]any {
	dict := map[string]any{
		KeyID:             t.ID,
		KeySchedule:       t.Schedule.Encode(),
		KeyCleaningPolicy: int(t.CleaningPolicy),
		KeyDeviceFilter:   int(t.DeviceFilter),
	}
	if t.Triggers != nil {
		triggers := make([]any, 0, len(t.Triggers))
		for _, tr := range t.Triggers {
			triggers = append(triggers, tr.Encode())
		}
		dict[KeyTriggers] = triggers
	}
	putSlice(dict, KeyTestingDevices, t.TestingDeviceIDs)
	putOptional(dict, KeyProjectName, t.ProjectName)
	putOptional(dict, KeyName, t.Name)
	putOptional(dict, KeyScheme, t.Scheme)
	putOptional(dict, KeyShouldAnalyze, t.ShouldAnalyze)
	putOptional(dict, KeyShouldTest, t.ShouldTest)
	putOptional(dict, KeyShouldArchive, t.ShouldArchive)
	if t.PlatformType != nil {
		dict[KeyPlatformType] = string(*t.PlatformType)
	}
	return dict
}

// Decode builds a template from its dictionary form. Every field falls back
// to its default when missing or malformed. Decode returns nil when the result
// does not validate, so callers treat such entries as nonexistent.
func Decode(dict map[string]any) *BuildTemplate {
	t := &BuildTemplate{
		ID:               stringValue(dict[KeyID]),
		ProjectName:      optionalString(dict[KeyProjectName]),
		Name:             optionalString(dict[KeyName]),
		Scheme:           optionalString(dict[KeyScheme]),
		Schedule:         ManualSchedule(),
		CleaningPolicy:   CleaningPolicyNever,
		ShouldAnalyze:    optionalBool(dict[KeyShouldAnalyze]),
		ShouldTest:       optionalBool(dict[KeyShouldTest]),
		ShouldArchive:    optionalBool(dict[KeyShouldArchive]),
		TestingDeviceIDs: stringSlice(dict[KeyTestingDevices]),
		DeviceFilter:     DeviceFilterAllAvailableDevicesAndSimulators,
	}

	if s, ok := decodeSchedule(dict[KeySchedule]); ok {
		t.Schedule = s
	}
	if n, ok := intValue(dict[KeyCleaningPolicy]); ok && CleaningPolicy(n).valid() {
		t.CleaningPolicy = CleaningPolicy(n)
	}
	if n, ok := intValue(dict[KeyDeviceFilter]); ok && DeviceFilter(n).valid() {
		t.DeviceFilter = DeviceFilter(n)
	}
	if s, ok := dict[KeyPlatformType].(string); ok {
		if p, ok := ParsePlatformType(s); ok {
			t.PlatformType = &p
		}
	}
	if items, ok := dict[KeyTriggers].([]any); ok {
		t.Triggers = make([]Trigger, 0, len(items))
		for _, item := range items {
			if tr, ok := decodeTrigger(item); ok {
				t.Triggers = append(t.Triggers, tr)
			}
		}
	}

	if !t.Validate() {
		return nil
	}
	return t
}

// MarshalJSON encodes the dictionary form of t.
func (t *BuildTemplate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Encode())
}

// DecodeJSON parses a JSON document and decodes it. It returns an error only
// for malformed JSON; a well-formed document that does not validate yields
// (nil, nil).
func DecodeJSON(data []byte) (*BuildTemplate, error) {
	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse build template: %w", err)
	}
	return Decode(dict), nil
}

// putSlice writes items as an array; a nil slice leaves key out.
func putSlice(dict map[string]any, key string, items []string) {
	if items == nil {
		return
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	dict[key] = out
}

func putOptional[T any](dict map[string]any, key string, v *T) {
	if v != nil {
		dict[key] = *v
	}
}

func optionalString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optionalBool(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

// intValue accepts the integer representations produced by Encode and by
// encoding/json (float64, json.Number).
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// stringSlice returns the string elements of v; anything that is not a string
// is dropped. It returns nil when v is not an array.
func stringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return append([]string{}, items...)
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
