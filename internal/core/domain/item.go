package domain

import "time"

type Size string

const (
	SizeXS      Size = "XS"
	SizeS       Size = "S"
	SizeM       Size = "M"
	SizeL       Size = "L"
	SizeXL      Size = "XL"
	SizeXXL     Size = "XXL"
	SizeRegular Size = "regular"
)

// ParseSize maps a raw size token to the enum, falling back to
// SizeRegular for empty or unknown values.
func ParseSize(s string) Size {
	switch Size(s) {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeRegular:
		return Size(s)
	default:
		return SizeRegular
	}
}

// Item is a catalog entry. Category is always stored lowercase.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	Size        Size      `json:"size"`
	Color       string    `json:"color"`
	ImageRef    string    `json:"imageRef"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
