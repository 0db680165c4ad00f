package models

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// Category groups transactions and budgets. Transactions reference a
// category by ID once the free-text name has been resolved.
type Category struct {
	Model
	Name      string `json:"name"`
	Slug      string `json:"slug" gorm:"uniqueIndex"`
	IsDefault bool   `json:"isDefault"`
}

// DefaultCategories are seeded on connect so that extracted receipts always
// resolve against a stable base set.
var DefaultCategories = []string{
	"food",
	"transport",
	"utilities",
	"entertainment",
	"shopping",
	"health",
	"rent",
	"other",
}

var slugInvalid = regexp.MustCompile("[^a-z0-9]+")

// Slugify converts a category name to its URL-safe, case-insensitive
// identity.
func Slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

// BeforeSave trims the name.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)

	if c.Name == "" {
		return fmt.Errorf("%w category: name must not be empty", ErrInvalid)
	}

	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}

	return nil
}

// ResolveOrCreateCategory returns the category a name refers to, creating it
// if it does not exist yet. Matching is case-insensitive through the slug.
func ResolveOrCreateCategory(db *gorm.DB, name string) (Category, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return Category{}, fmt.Errorf("%w category: name must not be empty", ErrInvalid)
	}

	slug := Slugify(normalized)
	if slug == "" {
		return Category{}, fmt.Errorf("%w category: name %q has no usable characters", ErrInvalid, name)
	}

	var category Category
	err := db.Where(&Category{Slug: slug}).First(&category).Error
	if err == nil {
		return category, nil
	}
	if !isNotFound(err) {
		return Category{}, err
	}

	category = Category{Name: normalized, Slug: slug}
	if err := db.Create(&category).Error; err != nil {
		return Category{}, err
	}

	return category, nil
}

// EnsureDefaultCategories upserts the default category set.
func EnsureDefaultCategories(db *gorm.DB) error {
	for _, name := range DefaultCategories {
		slug := Slugify(name)

		var category Category
		err := db.Where(&Category{Slug: slug}).First(&category).Error
		if err == nil {
			if category.IsDefault {
				continue
			}
			category.IsDefault = true
			if err := db.Save(&category).Error; err != nil {
				return err
			}
			continue
		}
		if !isNotFound(err) {
			return err
		}

		category = Category{Name: name, Slug: slug, IsDefault: true}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}

	return nil
}
