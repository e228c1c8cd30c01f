package core

// groupSharePercent is the 50/30/10/10 rule.
var groupSharePercent = map[Group]int64{
	Needs:   50,
	Wants:   30,
	Savings: 10,
	Buffer:  10,
}

// AllocationResult carries the rewritten categories and the groups that had
// no categories to receive their share.
type AllocationResult struct {
	Categories []Category
	Skipped    []Group
}

// GroupShare returns the percentage of income a group receives.
func GroupShare(g Group) int64 {
	return groupSharePercent[g]
}

// Allocate rewrites every category budget from income. Each category in a
// group gets round(income*share/count) whole shillings, rounded per category,
// so a group's sum may drift from its target by up to count-1 shillings.
// Spent and transactions are left alone. An income that is not positive or
// exceeds MaxAmount returns the categories unchanged; SetIncome rejects it
// before getting here.
func Allocate(income Money, categories []Category) AllocationResult {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.clone()
	}
	if income.Cents <= 0 || income.Cents > MaxAmount.Cents {
		return AllocationResult{Categories: out}
	}

	counts := make(map[Group]int64, len(Groups))
	for _, c := range out {
		counts[c.Group]++
	}

	var skipped []Group
	perCategory := make(map[Group]Money, len(Groups))
	for _, g := range Groups {
		share, err := allocateGroup(income, GroupShare(g), counts[g])
		if err != nil {
			skipped = append(skipped, g)
			continue
		}
		perCategory[g] = share
	}

	for i := range out {
		if share, ok := perCategory[out[i].Group]; ok {
			out[i].Budget = share
		}
	}
	return AllocationResult{Categories: out, Skipped: skipped}
}

// allocateGroup splits percent of income evenly across count categories and
// rounds each share to the nearest whole shilling, halves up.
func allocateGroup(income Money, percent, count int64) (Money, error) {
	if count <= 0 {
		return Money{}, ErrEmptyGroupAllocation
	}
	// units = income.Cents * percent / (100 cents * 100 percent * count)
	num := income.Cents * percent
	den := int64(100*100) * count
	units := (2*num + den) / (2 * den)
	return Money{Cents: units * 100}, nil
}
