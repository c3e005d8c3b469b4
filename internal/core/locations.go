package core

import "strings"

// EgyptianGovernorates are the valid Egyptian ends of a visa route.
var EgyptianGovernorates = []string{
	"Cairo", "Giza", "Alexandria", "Dakahlia", "Red Sea", "Beheira",
	"Faiyum", "Gharbia", "Ismailia", "Monufia", "Minya", "Qalyubia",
	"New Valley", "Suez", "Aswan", "Asyut", "Beni Suef", "Port Said",
	"Damietta", "Sharqia", "South Sinai", "Kafr El Sheikh", "Matrouh", "Luxor",
	"Qena", "North Sinai", "Sohag",
}

// SaudiCities are the valid Saudi ends of a visa route.
var SaudiCities = []string{
	"Makkah", "Madinah", "Jeddah", "Riyadh", "Dammam", "Taif",
}

// Endpoints returns the allowed origin and destination lists for a direction.
func (d TravelDirection) Endpoints() (from, to []string) {
	switch d {
	case EgyptToSaudi:
		return EgyptianGovernorates, SaudiCities
	case SaudiToEgypt:
		return SaudiCities, EgyptianGovernorates
	}
	return nil, nil
}

// CanonicalRoute checks that from/to belong to the lists of the given direction
// and returns them in their canonical spelling.
func CanonicalRoute(dir TravelDirection, from, to string) (string, string, error) {
	if !dir.Valid() {
		return "", "", invalid("travelDirection", ErrInvalidEnum)
	}
	froms, tos := dir.Endpoints()
	cf, ok := lookup(froms, from)
	if !ok {
		return "", "", invalid("fromLocation", ErrInvalidRoute)
	}
	ct, ok := lookup(tos, to)
	if !ok {
		return "", "", invalid("toLocation", ErrInvalidRoute)
	}
	return cf, ct, nil
}

func lookup(list []string, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return v, true
		}
	}
	return "", false
}
