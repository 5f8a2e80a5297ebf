package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
)

// PhoneStatus is the lifecycle status of a catalog entry
type PhoneStatus string

const (
	PhoneActive     PhoneStatus = "active"
	PhoneInactive   PhoneStatus = "inactive"
	PhoneOutOfStock PhoneStatus = "out_of_stock"
)

func (s PhoneStatus) Valid() bool {
	switch s {
	case PhoneActive, PhoneInactive, PhoneOutOfStock:
		return true
	}
	return false
}

const DefaultCategory = "smartphones"

type Display struct {
	Size        string `bson:"size" json:"size"`
	Resolution  string `bson:"resolution" json:"resolution"`
	Technology  string `bson:"technology" json:"technology"`
	RefreshRate string `bson:"refreshRate,omitempty" json:"refreshRate,omitempty"`
}

type RearCamera struct {
	Main      string   `bson:"main" json:"main"`
	UltraWide string   `bson:"ultraWide,omitempty" json:"ultraWide,omitempty"`
	Telephoto string   `bson:"telephoto,omitempty" json:"telephoto,omitempty"`
	Features  []string `bson:"features,omitempty" json:"features,omitempty"`
}

type Camera struct {
	Rear  RearCamera `bson:"rear" json:"rear"`
	Front string     `bson:"front" json:"front"`
	Video string     `bson:"video" json:"video"`
}

type Performance struct {
	Chipset string `bson:"chipset" json:"chipset"`
	RAM     string `bson:"ram" json:"ram"`
	Storage string `bson:"storage" json:"storage"`
	OS      string `bson:"os" json:"os"`
}

type Battery struct {
	Capacity string `bson:"capacity" json:"capacity"`
	Charging string `bson:"charging" json:"charging"`
	Wireless bool   `bson:"wireless" json:"wireless"`
}

type Connectivity struct {
	Network   []string `bson:"network,omitempty" json:"network,omitempty"`
	WiFi      string   `bson:"wifi" json:"wifi"`
	Bluetooth string   `bson:"bluetooth" json:"bluetooth"`
	Ports     []string `bson:"ports,omitempty" json:"ports,omitempty"`
}

type Design struct {
	Dimensions string   `bson:"dimensions" json:"dimensions"`
	Weight     string   `bson:"weight" json:"weight"`
	Colors     []string `bson:"colors,omitempty" json:"colors,omitempty"`
	Material   string   `bson:"material" json:"material"`
}

// Specifications groups the descriptive hardware fields of a phone
type Specifications struct {
	Display      Display      `bson:"display" json:"display"`
	Camera       Camera       `bson:"camera" json:"camera"`
	Performance  Performance  `bson:"performance" json:"performance"`
	Battery      Battery      `bson:"battery" json:"battery"`
	Connectivity Connectivity `bson:"connectivity" json:"connectivity"`
	Design       Design       `bson:"design" json:"design"`
}

// Phone represents a product in the catalog. Prices are whole VND.
type Phone struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Brand            string             `bson:"brand" json:"brand"`
	Model            string             `bson:"model" json:"model"`
	SKU              string             `bson:"sku" json:"sku"`
	Price            int64              `bson:"price" json:"price"`
	OriginalPrice    int64              `bson:"originalPrice" json:"originalPrice"`
	Discount         int                `bson:"discount" json:"discount"`
	Stock            int                `bson:"stock" json:"stock"`
	Status           PhoneStatus        `bson:"status" json:"status"`
	Specifications   Specifications     `bson:"specifications" json:"specifications"`
	Images           []string           `bson:"images" json:"images"`
	Videos           []string           `bson:"videos,omitempty" json:"videos,omitempty"`
	Thumbnail        string             `bson:"thumbnail" json:"thumbnail"`
	Description      string             `bson:"description" json:"description"`
	ShortDescription string             `bson:"shortDescription" json:"shortDescription"`
	Tags             []string           `bson:"tags" json:"tags"`
	Category         string             `bson:"category" json:"category"`
	Subcategory      string             `bson:"subcategory" json:"subcategory"`
	AverageRating    float64            `bson:"averageRating" json:"averageRating"`
	ReviewCount      int                `bson:"reviewCount" json:"reviewCount"`
	PublishedAt      time.Time          `bson:"publishedAt" json:"publishedAt"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize trims text fields and fills defaults.
func (p *Phone) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Model = strings.TrimSpace(p.Model)
	p.SKU = strings.TrimSpace(p.SKU)
	if p.Status == "" {
		p.Status = PhoneActive
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
}

// Validate checks required fields and ranges. All problems are reported in one error.
func (p *Phone) Validate() error {
	var problems []string
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, field+" is required")
		}
	}

	required("name", p.Name)
	required("brand", p.Brand)
	required("model", p.Model)
	required("sku", p.SKU)
	required("thumbnail", p.Thumbnail)
	required("description", p.Description)
	required("shortDescription", p.ShortDescription)
	required("category", p.Category)
	required("subcategory", p.Subcategory)

	s := p.Specifications
	required("specifications.display.size", s.Display.Size)
	required("specifications.display.resolution", s.Display.Resolution)
	required("specifications.display.technology", s.Display.Technology)
	required("specifications.camera.rear.main", s.Camera.Rear.Main)
	required("specifications.camera.front", s.Camera.Front)
	required("specifications.camera.video", s.Camera.Video)
	required("specifications.performance.chipset", s.Performance.Chipset)
	required("specifications.performance.ram", s.Performance.RAM)
	required("specifications.performance.storage", s.Performance.Storage)
	required("specifications.performance.os", s.Performance.OS)
	required("specifications.battery.capacity", s.Battery.Capacity)
	required("specifications.battery.charging", s.Battery.Charging)
	required("specifications.connectivity.wifi", s.Connectivity.WiFi)
	required("specifications.connectivity.bluetooth", s.Connectivity.Bluetooth)
	required("specifications.design.dimensions", s.Design.Dimensions)
	required("specifications.design.weight", s.Design.Weight)
	required("specifications.design.material", s.Design.Material)

	if p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if p.OriginalPrice < 0 {
		problems = append(problems, "originalPrice must not be negative")
	}
	if p.Discount < 0 || p.Discount > 100 {
		problems = append(problems, "discount must be between 0 and 100")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if !p.Status.Valid() {
		problems = append(problems, "status must be one of active, inactive, out_of_stock")
	}
	if p.AverageRating < 0 || p.AverageRating > 5 {
		problems = append(problems, "averageRating must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		problems = append(problems, "reviewCount must not be negative")
	}

	if len(problems) > 0 {
		return apperr.Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

// PhoneSummary is the short form of a phone attached to order lines.
type PhoneSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Brand     string             `json:"brand"`
	Thumbnail string             `json:"thumbnail"`
}

func (p *Phone) Summary() PhoneSummary {
	return PhoneSummary{ID: p.ID, Name: p.Name, Brand: p.Brand, Thumbnail: p.Thumbnail}
}
