package models

import (
	"fmt"
	"strings"
)

// UserID is the opaque numeric handle of a chat user.
type UserID = int64

// Category scopes a task to one area of life.
type Category string

const (
	CategorySchool   Category = "school"
	CategoryHobby    Category = "hobby"
	CategoryFreeTime Category = "freetime"
)

// Categories lists every category in menu order.
var Categories = []Category{CategorySchool, CategoryHobby, CategoryFreeTime}

// ParseCategory maps a raw token onto a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategorySchool, CategoryHobby, CategoryFreeTime:
		return true
	}
	return false
}

// Label is the human readable name shown in menus and replies.
func (c Category) Label() string {
	switch c {
	case CategorySchool:
		return "School"
	case CategoryHobby:
		return "Hobby"
	case CategoryFreeTime:
		return "Free time"
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}
