package models

import "strings"

var (
	ListingCategories = []string{"Books", "Electronics", "Hostel", "Other"}
	ListingConditions = []string{"New", "Like New", "Good", "Fair"}
)

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;unique" json:"name"`
	Slug string `gorm:"size:100;not null;unique" json:"slug"`
}

func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func IsValidCategory(name string) bool {
	return contains(ListingCategories, name)
}

func IsValidCondition(name string) bool {
	return contains(ListingConditions, name)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
