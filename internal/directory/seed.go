package directory

import "context"

// SeedDevOffices loads a small office roster into the memory store for local
// development. Production deployments load the full roster from Postgres.
func SeedDevOffices(s *InMemory) {
	ctx := context.Background()
	offices := []Office{
		{Code: "us-sen-CA-1", Chamber: ChamberUpper, HolderName: "Alex Padilla", RegionCode: "CA", IsVotingMember: true},
		{Code: "us-sen-CA-2", Chamber: ChamberUpper, HolderName: "Adam Schiff", RegionCode: "CA", IsVotingMember: true},
		{Code: "us-rep-CA-12", Chamber: ChamberLower, HolderName: "Lateefah Simon", RegionCode: "CA", DistrictCode: "12", IsVotingMember: true},
		{Code: "us-rep-CA-13", Chamber: ChamberLower, HolderName: "Adam Gray", RegionCode: "CA", DistrictCode: "13", IsVotingMember: true},

		{Code: "us-sen-WY-1", Chamber: ChamberUpper, HolderName: "John Barrasso", RegionCode: "WY", IsVotingMember: true},
		{Code: "us-sen-WY-2", Chamber: ChamberUpper, HolderName: "Cynthia Lummis", RegionCode: "WY", IsVotingMember: true},
		{Code: "us-rep-WY-AL", Chamber: ChamberLower, HolderName: "Harriet Hageman", RegionCode: "WY", IsVotingMember: true},

		{Code: "us-del-DC", Chamber: ChamberLower, HolderName: "Eleanor Holmes Norton", RegionCode: "DC", IsVotingMember: false, DelegateKind: DelegateKindDelegate},
		{Code: "us-rc-PR", Chamber: ChamberLower, HolderName: "Pablo Hernandez", RegionCode: "PR", IsVotingMember: false, DelegateKind: DelegateKindResidentCommissioner},
		{Code: "us-del-GU", Chamber: ChamberLower, HolderName: "James Moylan", RegionCode: "GU", IsVotingMember: false, DelegateKind: DelegateKindDelegate},
	}
	for _, o := range offices {
		_ = s.Upsert(ctx, o)
	}
}
