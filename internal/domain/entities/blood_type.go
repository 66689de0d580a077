package entities

import "sort"

// BloodType is an ABO/Rh group label such as "O-" or a rare group such as "O h".
type BloodType string

const (
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"

	// BloodTypeBombay is the Bombay (hh) phenotype, the only member of the default rarity set.
	BloodTypeBombay BloodType = "O h"

	// BloodTypeFilterAll disables blood type filtering.
	BloodTypeFilterAll BloodType = "All"
)

// StandardBloodTypes lists the selectable blood groups in display order.
var StandardBloodTypes = []BloodType{
	BloodTypeAPositive, BloodTypeANegative,
	BloodTypeBPositive, BloodTypeBNegative,
	BloodTypeABPositive, BloodTypeABNegative,
	BloodTypeOPositive, BloodTypeONegative,
}

// IsStandard reports whether b is one of StandardBloodTypes.
func (b BloodType) IsStandard() bool {
	for _, t := range StandardBloodTypes {
		if t == b {
			return true
		}
	}
	return false
}

// RaritySet is the configurable set of blood types flagged as rare.
type RaritySet map[BloodType]struct{}

// DefaultRareBloodTypes is used when no rarity set is configured.
var DefaultRareBloodTypes = []string{string(BloodTypeBombay)}

// NewRaritySet builds a rarity set from configuration values.
func NewRaritySet(types []string) RaritySet {
	set := make(RaritySet, len(types))
	for _, t := range types {
		set[BloodType(t)] = struct{}{}
	}
	return set
}

// Contains reports whether b is rare.
func (s RaritySet) Contains(b BloodType) bool {
	_, ok := s[b]
	return ok
}

// List returns the set members sorted.
func (s RaritySet) List() []BloodType {
	out := make([]BloodType, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsKnown reports whether b is a standard type or a configured rare type.
func (s RaritySet) IsKnown(b BloodType) bool {
	return b.IsStandard() || s.Contains(b)
}
