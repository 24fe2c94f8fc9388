package domain

// MergeProfiles performs the field-level merge of a fresh discovery result
// against the prior on-disk profile. Everything auto-detected is replaced by
// the fresh run; anything the prior profile marks human-curated is carried
// forward bit-for-bit, no matter what the current run detected. The
// conformance summary belongs to the external conformance checker and is
// always carried from the prior profile.
//
// Both inputs are left unmodified; the fresh profile's maps are rebuilt where
// curation applies.
func MergeProfiles(prior, fresh *CodebaseProfile) *CodebaseProfile {
	if prior == nil {
		return fresh
	}

	merged := *fresh
	merged.Conformance = prior.Conformance

	merged.Zones = make(map[string]*ZoneProfile, len(fresh.Zones))
	for name, zp := range fresh.Zones {
		priorZone := prior.Zones[name]
		merged.Zones[name] = mergeZoneProfile(priorZone, zp)
	}

	return &merged
}

func mergeZoneProfile(prior, fresh *ZoneProfile) *ZoneProfile {
	if prior == nil {
		return fresh
	}

	out := *fresh

	if len(prior.Patterns) > 0 {
		out.Patterns = make(map[string]PatternDetection, len(fresh.Patterns))
		for k, v := range fresh.Patterns {
			out.Patterns[k] = v
		}
		for k, v := range prior.Patterns {
			if v.Source == SourceHumanCurated {
				out.Patterns[k] = v
			}
		}
	}

	if len(prior.Conventions) > 0 {
		out.Conventions = make(map[string]ConventionDetection, len(fresh.Conventions))
		for k, v := range fresh.Conventions {
			out.Conventions[k] = v
		}
		for k, v := range prior.Conventions {
			if v.Source == SourceHumanCurated {
				out.Conventions[k] = v
			}
		}
	}

	// Purpose and contracts are human inputs when present in the prior
	// profile of a manual or hybrid zone; detection never produces them.
	if out.Purpose == "" {
		out.Purpose = prior.Purpose
	}
	if len(out.Contracts) == 0 {
		out.Contracts = prior.Contracts
	}

	return &out
}
