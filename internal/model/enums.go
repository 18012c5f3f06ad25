package model

// MemberStatus is the lifecycle stage of a group member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberPending  MemberStatus = "pending"
	MemberInactive MemberStatus = "inactive"
)

// Valid reports whether s is one of the enumerated member statuses.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberPending, MemberInactive:
		return true
	}
	return false
}

// Rank is the precedence used when listing members: active first, then
// pending, then inactive. Anything else sorts last.
func (s MemberStatus) Rank() int {
	switch s {
	case MemberActive:
		return 0
	case MemberPending:
		return 1
	case MemberInactive:
		return 2
	}
	return 9
}

// FestivalStatus is how far a group has got with a festival.
type FestivalStatus string

const (
	FestivalConsidering FestivalStatus = "considering"
	FestivalCommitted   FestivalStatus = "committed"
	FestivalPassed      FestivalStatus = "passed"
)

func (s FestivalStatus) Valid() bool {
	switch s {
	case FestivalConsidering, FestivalCommitted, FestivalPassed:
		return true
	}
	return false
}

// ArtistPriority is the group's interest in seeing an artist.
type ArtistPriority string

const (
	PriorityMustSee    ArtistPriority = "must_see"
	PriorityWantToSee  ArtistPriority = "want_to_see"
	PriorityNiceToHave ArtistPriority = "nice_to_have"
)

func (p ArtistPriority) Valid() bool {
	switch p {
	case PriorityMustSee, PriorityWantToSee, PriorityNiceToHave:
		return true
	}
	return false
}
