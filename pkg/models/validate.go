package models

// ValidationError is a user-caused rejection of a habit write. It is never
// retried and its message names the violated rule.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// The full set of validation failures. Compare with errors.Is; detect the
// category with errors.As(&*ValidationError{}).
var (
	ErrPleasantHabitHasReward  = &ValidationError{"a pleasant habit cannot have a reward"}
	ErrPleasantHabitHasRelated = &ValidationError{"a pleasant habit cannot have a related habit"}
	ErrRewardAndRelatedBothSet = &ValidationError{"reward and related habit cannot both be set, choose one"}
	ErrRelatedHabitNotPleasant = &ValidationError{"the related habit must be marked as pleasant"}

	ErrActionRequired      = &ValidationError{"action is required"}
	ErrDurationOutOfRange  = &ValidationError{"duration must be between 1 and 2 minutes"}
	ErrFrequencyOutOfRange = &ValidationError{"frequency must be between 1 and 7 days"}
	ErrTimeOutOfRange      = &ValidationError{"time of day is out of range"}
)

// Validate enforces the structural invariants of a habit definition. related
// must be the habit referenced by h.RelatedHabitID, or nil when no reference
// is set; the caller is responsible for the lookup so that Validate stays
// pure. Cheap local checks run before the one that needs the lookup.
func Validate(h *Habit, related *Habit) error {
	if h.Action == "" {
		return ErrActionRequired
	}
	if h.Duration < 1 || h.Duration > 2 {
		return ErrDurationOutOfRange
	}
	if h.Frequency < 1 || h.Frequency > 7 {
		return ErrFrequencyOutOfRange
	}
	if h.Time.Hour < 0 || h.Time.Hour > 23 || h.Time.Minute < 0 || h.Time.Minute > 59 {
		return ErrTimeOutOfRange
	}

	if h.IsPleasant {
		if h.HasReward() {
			return ErrPleasantHabitHasReward
		}
		if h.HasRelated() {
			return ErrPleasantHabitHasRelated
		}
	} else if h.HasReward() && h.HasRelated() {
		return ErrRewardAndRelatedBothSet
	}

	if h.HasRelated() && (related == nil || !related.IsPleasant) {
		return ErrRelatedHabitNotPleasant
	}

	return nil
}
