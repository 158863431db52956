package cookpot

import "sort"

var tierOrder = map[string]int{"primary": 0, "secondary": 1, "filler": 2}

// isFillerName reports whether an ingredient id counts as filler:
// either a known filler id, or one whose every tag is a filler tag.
func isFillerName(name string, tagsByItem map[string]map[string]float64) bool {
	if name == "" {
		return false
	}
	if FillerNames[name] {
		return true
	}
	tags := tagsByItem[name]
	if len(tags) == 0 {
		return false
	}
	for tag := range tags {
		if !FillerTags[tag] {
			return false
		}
	}
	return true
}

func missingIsFiller(m Missing, tagsByItem map[string]map[string]float64) bool {
	switch m.Type {
	case "tag":
		return FillerTags[m.Key]
	case "name":
		return isFillerName(m.Key, tagsByItem)
	case "name_any":
		if len(m.Options) == 0 {
			return false
		}
		for _, opt := range m.Options {
			if !isFillerName(opt, tagsByItem) {
				return false
			}
		}
		return true
	}
	return false
}

// collectPool gathers the name pool and tag pool from the slotted ids
// plus the pantry.
func collectPool(items []string, tagsByItem map[string]map[string]float64) (map[string]bool, map[string]bool) {
	poolNames := map[string]bool{}
	poolTags := map[string]bool{}
	for _, item := range items {
		if item == "" {
			continue
		}
		poolNames[item] = true
		for tag := range tagsByItem[item] {
			poolTags[tag] = true
		}
	}
	return poolNames, poolTags
}

// classifyNearMiss tiers one failing row:
//
//	primary   — at least one required non-filler id is in the pool
//	secondary — no name hit but a required non-filler tag is in the pool
//	filler    — neither
func classifyNearMiss(
	row *Row,
	poolNames, poolTags map[string]bool,
	tagsByItem map[string]map[string]float64,
) (tier string, featureHits, tagHits, nonFiller int) {
	for _, m := range row.Missing {
		if !missingIsFiller(m, tagsByItem) {
			nonFiller++
		}
	}

	if row.RuleMode == "none" {
		return "filler", 0, 0, nonFiller
	}

	for _, name := range row.ReqNames {
		if poolNames[name] && !isFillerName(name, tagsByItem) {
			featureHits++
		}
	}
	for _, group := range row.ReqGroups {
		for _, opt := range group {
			if poolNames[opt] && !isFillerName(opt, tagsByItem) {
				featureHits++
				break
			}
		}
	}
	for _, tag := range row.ReqTags {
		if poolTags[tag] && !FillerTags[tag] {
			tagHits++
		}
	}

	switch {
	case featureHits > 0:
		tier = "primary"
	case tagHits > 0:
		tier = "secondary"
	default:
		tier = "filler"
	}
	return tier, featureHits, tagHits, nonFiller
}

// rankNearMiss annotates, sorts and tier-groups the failing rows. Sort
// order: tier, more non-filler name hits, more tag hits, fewer
// non-filler missing pieces, higher score, name.
func rankNearMiss(
	rows []*Row,
	poolNames, poolTags map[string]bool,
	tagsByItem map[string]map[string]float64,
	limit int,
) ([]*Row, []Tier) {
	for _, row := range rows {
		tier, featureHits, tagHits, nonFiller := classifyNearMiss(row, poolNames, poolTags, tagsByItem)
		row.NearTier = tier
		row.NearFeatureHits = featureHits
		row.NearTagHits = tagHits
		row.NearMissingNonFiller = nonFiller
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ta, tb := tierOrder[a.NearTier], tierOrder[b.NearTier]; ta != tb {
			return ta < tb
		}
		if a.NearFeatureHits != b.NearFeatureHits {
			return a.NearFeatureHits > b.NearFeatureHits
		}
		if a.NearTagHits != b.NearTagHits {
			return a.NearTagHits > b.NearTagHits
		}
		if a.NearMissingNonFiller != b.NearMissingNonFiller {
			return a.NearMissingNonFiller < b.NearMissingNonFiller
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Name < b.Name
	})

	var limited []*Row
	byTier := map[string][]*Row{}
	for _, row := range rows {
		if limit > 0 && len(limited) >= limit {
			break
		}
		limited = append(limited, row)
		byTier[row.NearTier] = append(byTier[row.NearTier], row)
	}

	var tiers []Tier
	for _, key := range []string{"primary", "secondary", "filler"} {
		if len(byTier[key]) > 0 {
			tiers = append(tiers, Tier{Key: key, Count: len(byTier[key]), Items: byTier[key]})
		}
	}
	return limited, tiers
}
