package services

import "github.com/franciscosanchezn/freshbite-api/internal/models"

// MembershipTier describes a paid tier in the benefits catalog
type MembershipTier struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Benefits []string `json:"benefits"`
}

// MembershipTiers is the static catalog keyed by tier
var MembershipTiers = map[string]MembershipTier{
	models.MembershipBronze: {
		Name:  "Bronze",
		Price: 9.99,
		Benefits: []string{
			"5% discount on all orders",
			"Free delivery on orders above $30",
			"Priority customer support",
			"Early access to new items",
		},
	},
	models.MembershipSilver: {
		Name:  "Silver",
		Price: 19.99,
		Benefits: []string{
			"All Bronze benefits",
			"10% discount on all orders",
			"Free delivery on orders above $20",
			"Birthday special offer",
			"Monthly exclusive deals",
		},
	},
	models.MembershipGold: {
		Name:  "Gold",
		Price: 39.99,
		Benefits: []string{
			"All Silver benefits",
			"15% discount on all orders",
			"Free delivery on all orders",
			"VIP customer support",
			"Exclusive events access",
			"Quarterly free meal",
		},
	},
}
