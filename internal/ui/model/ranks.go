package model

// Rank orders members by seniority; lower is more senior.
type Rank int

const (
	RankAdmiral Rank = iota + 1
	RankCommander
	RankLieutenant
	RankSpecialist
	RankTechnician
	RankMember
	RankRecruit
	RankGuest
	RankAlly
)

// Ranks lists every named rank from most to least senior.
var Ranks = []Rank{
	RankAdmiral,
	RankCommander,
	RankLieutenant,
	RankSpecialist,
	RankTechnician,
	RankMember,
	RankRecruit,
	RankGuest,
	RankAlly,
}

// UnknownRankName is shown for ranks outside the named set.
const UnknownRankName = "Unknown"

// RankName returns the display name for a rank.
func RankName(rank Rank) string {
	switch rank {
	case RankAdmiral:
		return "Admiral"
	case RankCommander:
		return "Commander"
	case RankLieutenant:
		return "Lieutenant"
	case RankSpecialist:
		return "Specialist"
	case RankTechnician:
		return "Technician"
	case RankMember:
		return "Member"
	case RankRecruit:
		return "Recruit"
	case RankGuest:
		return "Guest"
	case RankAlly:
		return "Ally"
	default:
		return UnknownRankName
	}
}

func (r Rank) String() string {
	return RankName(r)
}
