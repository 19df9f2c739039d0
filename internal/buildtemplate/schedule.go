package buildtemplate

// ScheduleType decides what starts an integration.
type ScheduleType int

const (
	ScheduleTypePeriodic ScheduleType = iota + 1
	ScheduleTypeOnCommit
	ScheduleTypeManual
)

// PeriodicInterval is the cadence of a periodic schedule.
type PeriodicInterval int

const (
	PeriodicIntervalNone PeriodicInterval = iota
	PeriodicIntervalHourly
	PeriodicIntervalDaily
	PeriodicIntervalWeekly
)

// Weekday used by weekly schedules, Monday is 1.
type Weekday int

const (
	keyScheduleType      = "scheduleType"
	keyPeriodicInterval  = "periodicScheduleInterval"
	keyHourOfIntegration = "hourOfIntegration"
	keyMinutesAfterHour  = "minutesAfterHourToIntegrate"
	keyWeeklyScheduleDay = "weeklyScheduleDay"
)

// Schedule is the integration scheduling policy of a bot.
type Schedule struct {
	Type              ScheduleType
	PeriodicInterval  PeriodicInterval
	HourOfIntegration int
	MinutesAfterHour  int
	WeeklyScheduleDay Weekday
}

// ManualSchedule returns a schedule that only integrates on request.
func ManualSchedule() Schedule {
	return Schedule{Type: ScheduleTypeManual}
}

// OnCommitSchedule returns a schedule that integrates on every new commit.
func OnCommitSchedule() Schedule {
	return Schedule{Type: ScheduleTypeOnCommit}
}

// Encode returns the dictionary form of s.
func (s Schedule) Encode() map[string]any {
	return map[string]any{
		keyScheduleType:      int(s.Type),
		keyPeriodicInterval:  int(s.PeriodicInterval),
		keyHourOfIntegration: s.HourOfIntegration,
		keyMinutesAfterHour:  s.MinutesAfterHour,
		keyWeeklyScheduleDay: int(s.WeeklyScheduleDay),
	}
}

// decodeSchedule reads a schedule dictionary. ok is false when the value is
// not a dictionary or carries an unknown schedule type.
func decodeSchedule(v any) (Schedule, bool) {
	dict, ok := v.(map[string]any)
	if !ok {
		return Schedule{}, false
	}
	typ, ok := intValue(dict[keyScheduleType])
	if !ok || typ < int(ScheduleTypePeriodic) || typ > int(ScheduleTypeManual) {
		return Schedule{}, false
	}
	s := Schedule{Type: ScheduleType(typ)}
	if n, ok := intValue(dict[keyPeriodicInterval]); ok && n >= 0 && n <= int(PeriodicIntervalWeekly) {
		s.PeriodicInterval = PeriodicInterval(n)
	}
	if n, ok := intValue(dict[keyHourOfIntegration]); ok {
		s.HourOfIntegration = n
	}
	if n, ok := intValue(dict[keyMinutesAfterHour]); ok {
		s.MinutesAfterHour = n
	}
	if n, ok := intValue(dict[keyWeeklyScheduleDay]); ok {
		s.WeeklyScheduleDay = Weekday(n)
	}
	return s, true
}
