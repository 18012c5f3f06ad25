package query

import (
	"sort"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// SortMembers applies the member list ordering on top of the storage
// ordering: status rank (active, pending, inactive, anything else) and then
// name. The result does not depend on the input order.
func SortMembers(members []model.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := members[i].Status.Rank(), members[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return members[i].Name < members[j].Name
	})
}
