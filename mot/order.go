package mot

import "sort"

const DEFAULT_RANK = 255

func rankOf(id uint16, names BoneNames, ranks Ranks) int {
	name, ok := names.BoneName(int(id))
	if !ok {
		return DEFAULT_RANK
	}
	if rank, ok := ranks.Rank(name); ok {
		return rank
	}
	return DEFAULT_RANK
}

// SortCanonical reorders bones into sequence required by game.
// Sort is stable, bones without rank go last keeping their order.
func (qm *QualifiedMotion) SortCanonical(names BoneNames, ranks Ranks) {
	keys := make(map[uint16]int, len(qm.Anims))
	for _, ba := range qm.Anims {
		if _, ok := keys[ba.Bone]; !ok {
			keys[ba.Bone] = rankOf(ba.Bone, names, ranks)
		}
	}
	sort.SliceStable(qm.Anims, func(i, j int) bool {
		return keys[qm.Anims[i].Bone] < keys[qm.Anims[j].Bone]
	})
}
