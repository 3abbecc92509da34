package entity

import "time"

// Tag is a user-defined label attached to any number of addresses.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TagColors is the palette new tags pick from when no colour is given.
var TagColors = []string{ //nolint:gochecknoglobals
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-purple-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-red-500",
	"bg-orange-500",
	"bg-teal-500",
	"bg-cyan-500",
	"bg-emerald-500",
	"bg-lime-500",
}

// TagInput holds the user-supplied fields of a tag. An empty Color picks one from TagColors.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
