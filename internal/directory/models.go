package directory

// Chamber identifies which legislative chamber an office belongs to. The two
// chambers run distinct submission protocols downstream, so the chamber also
// selects the delivery lane.
type Chamber string

const (
	ChamberUpper Chamber = "upper"
	ChamberLower Chamber = "lower"
)

// DelegateKind distinguishes the non-voting office titles. Empty for
// ordinary voting members.
type DelegateKind string

const (
	DelegateKindNone                 DelegateKind = ""
	DelegateKindDelegate             DelegateKind = "delegate"
	DelegateKindResidentCommissioner DelegateKind = "resident-commissioner"
)

// Office is one deliverable target: an elected seat for a region. Offices
// are read-only reference data; the orchestration core never mutates them.
type Office struct {
	Code           string
	Chamber        Chamber
	HolderName     string
	RegionCode     string
	DistrictCode   string // empty for statewide and at-large seats
	IsVotingMember bool
	DelegateKind   DelegateKind
}
