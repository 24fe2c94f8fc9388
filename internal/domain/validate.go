package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile wraps all profile schema validation failures. A failed
// validation aborts the write and leaves the previous on-disk profile intact.
var ErrInvalidProfile = errors.New("invalid profile")

// ValidateProfile checks the profile document against the schema invariants
// before it is written: version and zone fields present, every confidence and
// consistency value in [0,1], zones pairwise non-overlapping, and every
// architecture violation referencing at least one concrete location.
func ValidateProfile(p *CodebaseProfile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}
	if p.SchemaVersion == "" {
		return fmt.Errorf("%w: missing schema_version", ErrInvalidProfile)
	}
	if p.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generated_at", ErrInvalidProfile)
	}

	zones := make([]Zone, 0, len(p.Zones))
	for name, zp := range p.Zones {
		if zp == nil {
			return fmt.Errorf("%w: zone %q is null", ErrInvalidProfile, name)
		}
		if zp.Path == "" {
			return fmt.Errorf("%w: zone %q has no path", ErrInvalidProfile, name)
		}
		if zp.Language == "" {
			return fmt.Errorf("%w: zone %q has no language", ErrInvalidProfile, name)
		}
		switch zp.Detection {
		case DetectionAuto, DetectionManual, DetectionHybrid:
		default:
			return fmt.Errorf("%w: zone %q has detection %q", ErrInvalidProfile, name, zp.Detection)
		}
		zones = append(zones, Zone{Name: name, Path: zp.Path})

		for pname, pd := range zp.Patterns {
			if pd.Confidence < 0 || pd.Confidence > 1 {
				return fmt.Errorf("%w: zone %q pattern %q confidence %v outside [0,1]",
					ErrInvalidProfile, name, pname, pd.Confidence)
			}
			if pd.Source != SourceAutoDetected && pd.Source != SourceHumanCurated {
				return fmt.Errorf("%w: zone %q pattern %q has source %q",
					ErrInvalidProfile, name, pname, pd.Source)
			}
		}
		for cname, cd := range zp.Conventions {
			if cd.Consistency < 0 || cd.Consistency > 1 {
				return fmt.Errorf("%w: zone %q convention %q consistency %v outside [0,1]",
					ErrInvalidProfile, name, cname, cd.Consistency)
			}
		}
		for _, v := range zp.Architecture.Violations {
			if len(v.Locations) == 0 {
				return fmt.Errorf("%w: zone %q violation %s→%s has no source locations",
					ErrInvalidProfile, name, v.FromModule, v.ToModule)
			}
			if v.Severity != SeverityMajor && v.Severity != SeverityMinor {
				return fmt.Errorf("%w: zone %q violation has severity %q",
					ErrInvalidProfile, name, v.Severity)
			}
		}
		if zp.Tests.CoverageEstimate < 0 || zp.Tests.CoverageEstimate > 1 {
			return fmt.Errorf("%w: zone %q coverage estimate %v outside [0,1]",
				ErrInvalidProfile, name, zp.Tests.CoverageEstimate)
		}
	}

	if err := CheckZoneOverlap(zones); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	for _, i := range p.Interactions {
		if i.ID == "" || i.Type == "" {
			return fmt.Errorf("%w: interaction missing id or type", ErrInvalidProfile)
		}
	}

	return nil
}
