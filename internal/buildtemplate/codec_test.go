package buildtemplate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullTemplate() *BuildTemplate {
	tpl := New("Buildasaur")
	tpl.Scheme = ptr("Buildasaur")
	tpl.Schedule = Schedule{
		Type:              ScheduleTypePeriodic,
		PeriodicInterval:  PeriodicIntervalWeekly,
		HourOfIntegration: 3,
		MinutesAfterHour:  15,
		WeeklyScheduleDay: 5,
	}
	tpl.CleaningPolicy = CleaningPolicyOnceADay
	tpl.ShouldTest = ptr(true)
	tpl.TestingDeviceIDs = []string{"device-a", "device-b"}
	tpl.DeviceFilter = DeviceFilterSelectedDevicesAndSimulators
	platform := PlatformOSX
	tpl.PlatformType = &platform
	tpl.Triggers = []Trigger{
		{
			Name:       "Install pods",
			Type:       TriggerTypeScript,
			Phase:      TriggerPhasePrebuild,
			ScriptBody: "cd Buildasaur && pod install",
		},
		{
			Name:  "Notify",
			Type:  TriggerTypeEmail,
			Phase: TriggerPhasePostbuild,
			Conditions: &TriggerConditions{
				OnBuildErrors:  true,
				OnFailingTests: true,
			},
			Email: &EmailConfiguration{
				AdditionalRecipients: []string{"team@example.com"},
				EmailCommitters:      true,
			},
		},
	}
	return tpl
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*BuildTemplate)
	}{
		{name: "all fields set", modify: func(*BuildTemplate) {}},
		{name: "optional flags absent", modify: func(b *BuildTemplate) {
			b.ShouldAnalyze = nil
			b.ShouldTest = nil
			b.ShouldArchive = nil
		}},
		{name: "flags explicitly false", modify: func(b *BuildTemplate) {
			b.ShouldAnalyze = ptr(false)
			b.ShouldTest = ptr(false)
			b.ShouldArchive = ptr(false)
		}},
		{name: "no project and no platform", modify: func(b *BuildTemplate) {
			b.ProjectName = nil
			b.PlatformType = nil
		}},
		{name: "no triggers and no devices", modify: func(b *BuildTemplate) {
			b.Triggers = []Trigger{}
			b.TestingDeviceIDs = []string{}
		}},
		{name: "nil triggers and devices", modify: func(b *BuildTemplate) {
			b.Triggers = nil
			b.TestingDeviceIDs = nil
		}},
		{name: "email trigger without recipients", modify: func(b *BuildTemplate) {
			b.Triggers = []Trigger{{
				Type:  TriggerTypeEmail,
				Phase: TriggerPhasePostbuild,
				Email: &EmailConfiguration{EmailCommitters: true},
			}}
		}},
		{name: "email trigger with empty recipients", modify: func(b *BuildTemplate) {
			b.Triggers = []Trigger{{
				Type:  TriggerTypeEmail,
				Email: &EmailConfiguration{AdditionalRecipients: []string{}},
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			original := fullTemplate()
			tt.modify(original)

			decoded := Decode(original.Encode())
			require.NotNil(t, decoded)
			assert.Equal(t, original, decoded)

			data, err := json.Marshal(original)
			require.NoError(t, err)
			fromJSON, err := DecodeJSON(data)
			require.NoError(t, err)
			require.NotNil(t, fromJSON)
			assert.Equal(t, original, fromJSON)
		})
	}
}

func TestEncode_OmitsAbsentOptionals(t *testing.T) {
	t.Parallel()

	tpl := fullTemplate()
	tpl.ProjectName = nil
	tpl.ShouldAnalyze = nil
	tpl.PlatformType = nil

	dict := tpl.Encode()
	assert.NotContains(t, dict, KeyProjectName)
	assert.NotContains(t, dict, KeyShouldAnalyze)
	assert.NotContains(t, dict, KeyPlatformType)
	assert.Equal(t, true, dict[KeyShouldTest])
	assert.Equal(t, false, dict[KeyShouldArchive])
	for key, value := range dict {
		assert.NotNil(t, value, "key %s must not be null", key)
	}
}

func TestRoundTrip_MinimalTemplate(t *testing.T) {
	t.Parallel()

	tpl := &BuildTemplate{ID: "id-1", Name: ptr("n"), Scheme: ptr("s"), Schedule: ManualSchedule()}

	dict := tpl.Encode()
	assert.NotContains(t, dict, KeyTriggers)
	assert.NotContains(t, dict, KeyTestingDevices)

	decoded := Decode(dict)
	require.NotNil(t, decoded)
	assert.Equal(t, tpl, decoded)
	assert.Nil(t, decoded.Triggers)
	assert.Nil(t, decoded.TestingDeviceIDs)
}

func TestRoundTrip_NewTemplateWithEmailTrigger(t *testing.T) {
	t.Parallel()

	tpl := New("Foo")
	tpl.Scheme = ptr("Foo")
	tpl.Triggers = append(tpl.Triggers, Trigger{
		Type:  TriggerTypeEmail,
		Email: &EmailConfiguration{EmailCommitters: true},
	})

	decoded := Decode(tpl.Encode())
	require.NotNil(t, decoded)
	assert.Equal(t, tpl, decoded)
	require.Len(t, decoded.Triggers, 1)
	assert.Nil(t, decoded.Triggers[0].Email.AdditionalRecipients)
	assert.NotNil(t, decoded.TestingDeviceIDs)
}

func TestDecode_RequiresNameAndScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remove string
	}{
		{name: "missing name", remove: KeyName},
		{name: "missing scheme", remove: KeyScheme},
		{name: "missing id", remove: KeyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dict := fullTemplate().Encode()
			delete(dict, tt.remove)
			assert.Nil(t, Decode(dict))
		})
	}
}

func TestDecode_NamelessTemplateIsSkipped(t *testing.T) {
	t.Parallel()

	tpl := New("Foo")
	tpl.Name = nil

	assert.Nil(t, Decode(tpl.Encode()))
}

func TestDecode_DefaultsForMissingAndMalformedFields(t *testing.T) {
	t.Parallel()

	dict := map[string]any{
		KeyID:             "abc",
		KeyName:           "Template",
		KeyScheme:         "App",
		KeySchedule:       "every day",
		KeyCleaningPolicy: 42,
		KeyDeviceFilter:   "all",
		KeyPlatformType:   "com.example.toaster",
		KeyTriggers:       []any{"not a trigger", map[string]any{"name": "only name"}},
		KeyTestingDevices: []any{"device", 7},
		KeyShouldTest:     "yes",
	}

	tpl := Decode(dict)
	require.NotNil(t, tpl)
	assert.Equal(t, ManualSchedule(), tpl.Schedule)
	assert.Equal(t, CleaningPolicyNever, tpl.CleaningPolicy)
	assert.Equal(t, DeviceFilterAllAvailableDevicesAndSimulators, tpl.DeviceFilter)
	assert.Nil(t, tpl.PlatformType)
	assert.Nil(t, tpl.ShouldTest)
	assert.Nil(t, tpl.ProjectName)
	assert.Equal(t, []string{"device"}, tpl.TestingDeviceIDs)
	require.Len(t, tpl.Triggers, 1)
	assert.Equal(t, "only name", tpl.Triggers[0].Name)
	assert.Nil(t, tpl.Triggers[0].Conditions)
}

func TestDecode_UnknownScheduleTypeFallsBackToManual(t *testing.T) {
	t.Parallel()

	dict := fullTemplate().Encode()
	dict[KeySchedule] = map[string]any{keyScheduleType: 17}

	tpl := Decode(dict)
	require.NotNil(t, tpl)
	assert.Equal(t, ManualSchedule(), tpl.Schedule)
}

func TestDecode_PreservesTriggerOrder(t *testing.T) {
	t.Parallel()

	tpl := fullTemplate()
	tpl.Triggers = []Trigger{{Name: "c"}, {Name: "a"}, {Name: "b"}}

	decoded := Decode(tpl.Encode())
	require.NotNil(t, decoded)
	names := make([]string, 0, len(decoded.Triggers))
	for _, tr := range decoded.Triggers {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tpl, err := DecodeJSON([]byte(`{"id":"abc","name":"T","scheme":"S","cleaning_policy":1,"device_filter":2}`))
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, CleaningPolicyAlways, tpl.CleaningPolicy)
	assert.Equal(t, DeviceFilterAllSimulators, tpl.DeviceFilter)

	tpl, err = DecodeJSON([]byte(`{"id":"abc","name":"T"}`))
	require.NoError(t, err)
	assert.Nil(t, tpl)

	_, err = DecodeJSON([]byte(`{"id":`))
	require.Error(t, err)
}

func TestIntValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in any
		n  int
		ok bool
	}{
		{in: 3, n: 3, ok: true},
		{in: int64(4), n: 4, ok: true},
		{in: float64(5), n: 5, ok: true},
		{in: 5.5, ok: false},
		{in: json.Number("6"), n: 6, ok: true},
		{in: "7", ok: false},
		{in: nil, ok: false},
	}

	for _, tt := range tests {
		n, ok := intValue(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.n, n, "%v", tt.in)
	}
}
