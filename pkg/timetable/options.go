package timetable

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var optionsValidate = validator.New()

// Options configures one Build call. The zero value is not valid on its
// own — use DefaultOptions or LoadOptions, both of which populate the
// required horizon fields.
type Options struct {
	// ScheduleOffsetDays is the horizon left-padding in days (§6).
	ScheduleOffsetDays int `yaml:"schedule_offset_days" validate:"gte=0"`

	// MaxDays is the horizon length in days, including the offset padding.
	MaxDays int `yaml:"max_days" validate:"required,gt=0"`

	// SkipInvalid controls the §7 InvalidServiceTime policy: true (the
	// default) drops the offending day silently; false records it under
	// Graph.InvalidDays and logs a warning instead.
	SkipInvalid bool `yaml:"skip_invalid"`

	// ApplyRules, when set, routes schedule.Service values whose
	// RuleParticipant flag is set to the external RuleServiceMerger
	// collaborator instead of building a route for them directly.
	ApplyRules bool `yaml:"apply_rules"`

	// NoLocalTransport drops every route that stops at a station marked
	// Local (§4.7, P5); the station nodes themselves are still built.
	NoLocalTransport bool `yaml:"no_local_transport"`

	// CheckTrips enables the dormant checkTrip consistency pass over
	// every registered trip (§12.3). Disabled by default, matching the
	// source's accidental current behavior.
	CheckTrips bool `yaml:"check_trips"`

	// ExpandTrips additionally registers each materialized route's
	// concrete trips into Graph.ExpandedTrips, one group per route (§6
	// expand_trips, add_expanded_trips). Off by default: the secondary
	// index roughly doubles trip bookkeeping and most callers only need
	// the primary-id lookup. Broken-trip exclusion from the expanded
	// index is still gated by CheckTrips — enabling ExpandTrips alone
	// never touches BrokenTrips.
	ExpandTrips bool `yaml:"expand_trips"`

	// UsePlatforms is passed through to the StationBuilder collaborator
	// (§6 use_platforms): whether it should attach platform data to the
	// station nodes it builds.
	UsePlatforms bool `yaml:"use_platforms"`

	// WzrClassesPath/WzrMatrixPath are passed through to the
	// WaitingTimeRuleLoader collaborator unchanged (§6 wzr_classes_path,
	// wzr_matrix_path); this module never reads the files itself.
	WzrClassesPath string `yaml:"wzr_classes_path"`
	WzrMatrixPath  string `yaml:"wzr_matrix_path"`

	// PlannedTransferDelta is passed through to the WaitsForComputer
	// collaborator unchanged (§6 planned_transfer_delta): the extra
	// minutes a connection's scheduled transfer time must clear before
	// the next trip at a stop counts as "waited for" rather than missed.
	PlannedTransferDelta int `yaml:"planned_transfer_delta"`

	// Debug logs a kr/pretty dump of the finished graph's summary
	// statistics at debug level once construction completes.
	Debug bool `yaml:"debug"`
}

// DefaultOptions returns the Options the builder uses when none are
// supplied explicitly.
func DefaultOptions() *Options {
	return &Options{
		ScheduleOffsetDays: DefaultScheduleOffsetDays,
		MaxDays:            DefaultScheduleOffsetDays*2 + 365,
		SkipInvalid:        true,
	}
}

// LoadOptions reads Options from a YAML file and validates it.
func LoadOptions(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("parse options file: %w", err)
	}
	if err := optionsValidate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}
