package model

// Tag kinds used by the onboarding taxonomy. Each kind lives in its own
// table (interest_tags, lifecycle_tags, household_tags) with identical shape,
// so a single struct covers all three.
const (
	TagKindInterest  = "interest"
	TagKindLifecycle = "lifecycle"
	TagKindHousehold = "household"
)

// Tag is a row of one of the three taxonomy tables. Kind is not a column;
// it records which table the row came from.
type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// TagSelection carries the tag ids a user picked during onboarding, grouped
// by taxonomy. The repository replaces the user's join rows with exactly
// these sets.
type TagSelection struct {
	InterestIDs  []uint64 `json:"interest_ids"`
	LifecycleIDs []uint64 `json:"lifecycle_ids"`
	HouseholdIDs []uint64 `json:"household_ids"`
}
