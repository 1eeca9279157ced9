package schedule

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over a Schedule and every Service it
// contains, then checks the structural invariants the tags can't express
// (Times length, in/out-allowed length). It is the first line of defense
// behind the builder's FatalInputError taxonomy (§10.2): a feed adapter bug
// that produces a malformed Schedule is caught here, before any interning
// pool or bitfield store is touched.
func (s *Schedule) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("schedule %q: %w", s.Name, err)
	}
	for i, svc := range s.Services {
		if err := svc.validate(); err != nil {
			return fmt.Errorf("schedule %q: service %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func (svc *Service) validate() error {
	if err := validate.Struct(svc); err != nil {
		return err
	}

	numStops := len(svc.Route.Stations)
	if want := numStops * 2; len(svc.Times) != want {
		return fmt.Errorf("times has %d entries, want %d (2 * %d stops)", len(svc.Times), want, numStops)
	}
	if len(svc.Route.InAllowed) != numStops || len(svc.Route.OutAllowed) != numStops {
		return fmt.Errorf("in_allowed/out_allowed must have %d entries", numStops)
	}
	if len(svc.Sections) != numStops-1 {
		return fmt.Errorf("sections has %d entries, want %d (stops - 1)", len(svc.Sections), numStops-1)
	}
	if svc.Tracks != nil && len(svc.Tracks) != numStops {
		return fmt.Errorf("tracks has %d entries, want %d", len(svc.Tracks), numStops)
	}
	return nil
}
