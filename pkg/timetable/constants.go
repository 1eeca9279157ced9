package timetable

// MinutesADay is the length of a motis-day in local minutes (§6).
const MinutesADay = 1440

// DefaultScheduleOffsetDays is the horizon left-padding (in days) applied
// before schedule_begin so that a service whose first section shifts to an
// earlier day (crossing midnight backwards under DST correction, or via a
// negative day_offset section) still has representable days at index >= 0.
// It matches the upstream default of five days.
const DefaultScheduleOffsetDays = 5

// MaxFixOffsetRetries bounds the §7 "no explicit bound" retry loop for a
// service whose local time sequence can't be made monotonic: the source
// observed feeds encoding DST ambiguity as +60, so minutes advance by 60
// on every retry; 24 retries covers a full day without looping forever on
// truly malformed input.
const MaxFixOffsetRetries = 24

const fixOffsetStep = 60
