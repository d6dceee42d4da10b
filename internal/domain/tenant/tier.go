package tenant

// RoleTier is a coarse access level gating which tier of functionality a
// member may reach.
type RoleTier string

const (
	TierCustomer RoleTier = "customer"
	TierTenant   RoleTier = "tenant"
	TierSystem   RoleTier = "system"
)

var tierRank = map[RoleTier]int{
	TierCustomer: 1,
	TierTenant:   2,
	TierSystem:   3,
}

// Valid reports whether t is a known tier.
func (t RoleTier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t grants at least the access of min.
// Unknown tiers rank below every known tier.
func (t RoleTier) AtLeast(min RoleTier) bool {
	return tierRank[t] >= tierRank[min] && tierRank[t] > 0
}
