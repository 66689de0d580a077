package entities

// NearbyDonorsEstimate is a display-only projection shown on the donor
// confirmation view. It is never persisted.
type NearbyDonorsEstimate struct {
	Count         int    `json:"count"`
	EstimatedTime string `json:"estimatedTime"`
	Radius        string `json:"radius"`
	Placeholder   bool   `json:"placeholder"`
}

// FallbackNearbyDonorsEstimate is shown when no estimate could be computed.
func FallbackNearbyDonorsEstimate() NearbyDonorsEstimate {
	return NearbyDonorsEstimate{
		Count:         8,
		EstimatedTime: "15 minutes",
		Radius:        "5 km",
		Placeholder:   true,
	}
}
