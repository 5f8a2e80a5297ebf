package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"phonestore/models"
)

//go:embed phones.json
var featuredPhones []byte

var generatedModels = map[string][]string{
	"Apple":   {"iPhone 14 Pro Max", "iPhone 14 Pro", "iPhone 14", "iPhone 13 Pro Max", "iPhone 13 Pro", "iPhone 13"},
	"Samsung": {"Galaxy S23 Ultra", "Galaxy S23+", "Galaxy S23", "Galaxy A54", "Galaxy A34", "Galaxy Z Fold 5"},
	"Xiaomi":  {"Mi 14 Pro", "Mi 14", "Redmi Note 13 Pro", "Redmi Note 13", "POCO X6 Pro", "POCO F5"},
	"OPPO":    {"Find X7 Ultra", "Find X7", "Reno 11 Pro", "Reno 11", "A98", "A78"},
	"Vivo":    {"X100 Pro", "X100", "V30 Pro", "V30", "Y100", "Y78"},
	"OnePlus": {"12 Pro", "12", "11 Pro", "11", "Nord 3", "Nord CE 3"},
	"Google":  {"Pixel 8 Pro", "Pixel 8", "Pixel 7a", "Pixel 6a"},
	"Huawei":  {"P60 Pro", "P60", "Mate 60 Pro", "Mate 60", "Nova 11", "Nova 11 Pro"},
}

var generatedBrands = []string{"Apple", "Samsung", "Xiaomi", "OPPO", "Vivo", "OnePlus", "Google", "Huawei"}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// catalog returns the featured phones followed by extra generated ones.
// The same seed always yields the same catalog.
func catalog(extra int, seed uint64) ([]models.Phone, error) {
	var phones []models.Phone
	if err := json.Unmarshal(featuredPhones, &phones); err != nil {
		return nil, fmt.Errorf("decode featured phones: %w", err)
	}

	r := rand.New(rand.NewPCG(seed, seed^0x5eed))
	offset := len(phones)
	for i := offset; i < offset+extra; i++ {
		brand := pick(r, generatedBrands)
		model := pick(r, generatedModels[brand])
		storage := pick(r, []string{"128GB", "256GB", "512GB"})
		ram := pick(r, []string{"8GB", "12GB", "16GB"})
		price := int64(r.IntN(20000000) + 5000000)
		osName := "Android 14"
		if brand == "Apple" {
			osName = "iOS 17"
		}
		subcategory := "mainstream"
		if i%2 == 0 {
			subcategory = "flagship"
		}

		phones = append(phones, models.Phone{
			Name:          model + " " + storage,
			Brand:         brand,
			Model:         model,
			SKU:           fmt.Sprintf("%s%d%s", strings.ToUpper(brand[:2]), i, storage),
			Price:         price,
			OriginalPrice: price * 11 / 10,
			Discount:      r.IntN(15) + 5,
			Stock:         r.IntN(100) + 10,
			Status:        models.PhoneActive,
			Specifications: models.Specifications{
				Display: models.Display{
					Size:        fmt.Sprintf("%.1f inch", 6+r.Float64()*1.5),
					Resolution:  "2340 x 1080",
					Technology:  "OLED",
					RefreshRate: "120Hz",
				},
				Camera: models.Camera{
					Rear: models.RearCamera{
						Main:      fmt.Sprintf("%dMP", r.IntN(100)+50),
						UltraWide: "12MP",
						Telephoto: "8MP",
						Features:  []string{"Night mode", "Portrait mode"},
					},
					Front: "32MP",
					Video: "4K@30fps",
				},
				Performance: models.Performance{Chipset: "Snapdragon 8 Gen 2", RAM: ram, Storage: storage, OS: osName},
				Battery: models.Battery{
					Capacity: fmt.Sprintf("%d mAh", r.IntN(2000)+4000),
					Charging: "65W Fast Charging",
					Wireless: true,
				},
				Connectivity: models.Connectivity{
					Network:   []string{"5G", "4G LTE"},
					WiFi:      "WiFi 6",
					Bluetooth: "Bluetooth 5.3",
					Ports:     []string{"USB-C"},
				},
				Design: models.Design{
					Dimensions: "160 x 75 x 8 mm",
					Weight:     fmt.Sprintf("%dg", r.IntN(50)+180),
					Colors:     []string{"Black", "White", "Blue", "Green"},
					Material:   "Glass",
				},
			},
			Images: []string{
				"https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=500",
				"https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=500",
			},
			Thumbnail:        "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=300",
			Description:      model + " với camera chuyên nghiệp và hiệu năng mạnh mẽ.",
			ShortDescription: fmt.Sprintf("%s %s - %s flagship mới nhất", model, storage, brand),
			Tags:             []string{"flagship", "camera", "gaming", "premium"},
			Category:         models.DefaultCategory,
			Subcategory:      subcategory,
			AverageRating:    4 + r.Float64(),
			ReviewCount:      r.IntN(200) + 50,
		})
	}
	return phones, nil
}
