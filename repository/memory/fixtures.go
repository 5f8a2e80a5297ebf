package memory

import (
	"strings"

	"phonestore/models"
)

// SamplePhone returns an active phone that passes validation.
func SamplePhone(name, brand string, price int64, stock int) models.Phone {
	slug := strings.ToUpper(strings.ReplaceAll(brand+"-"+name, " ", "-"))
	return models.Phone{
		Name:             name,
		Brand:            brand,
		Model:            name,
		SKU:              slug,
		Price:            price,
		OriginalPrice:    price,
		Stock:            stock,
		Status:           models.PhoneActive,
		Thumbnail:        "https://cdn.example.com/" + strings.ToLower(slug) + ".jpg",
		Images:           []string{},
		Tags:             []string{strings.ToLower(brand)},
		Description:      name + " by " + brand,
		ShortDescription: name,
		Category:         models.DefaultCategory,
		Subcategory:      "flagship",
		Specifications: models.Specifications{
			Display:      models.Display{Size: "6.1 inch", Resolution: "2556x1179", Technology: "OLED"},
			Camera:       models.Camera{Rear: models.RearCamera{Main: "48MP"}, Front: "12MP", Video: "4K@60fps"},
			Performance:  models.Performance{Chipset: "A17", RAM: "8GB", Storage: "256GB", OS: "iOS 17"},
			Battery:      models.Battery{Capacity: "3349mAh", Charging: "20W"},
			Connectivity: models.Connectivity{WiFi: "Wi-Fi 6E", Bluetooth: "5.3"},
			Design:       models.Design{Dimensions: "147.6x71.6x7.8mm", Weight: "171g", Material: "Aluminium"},
		},
	}
}
