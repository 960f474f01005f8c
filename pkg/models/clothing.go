package models

// Slot is one of the six fixed clothing categories.
type Slot string

const (
	SlotFootwear    Slot = "footwear"
	SlotTop         Slot = "top"
	SlotBottom      Slot = "bottom"
	SlotAccessories Slot = "accessories"
	SlotWildcard1   Slot = "wildcard1"
	SlotWildcard2   Slot = "wildcard2"
)

// Slots lists every clothing slot. Enrichment output always has exactly these keys.
var Slots = []Slot{
	SlotFootwear,
	SlotTop,
	SlotBottom,
	SlotAccessories,
	SlotWildcard1,
	SlotWildcard2,
}

// ClothingDescription maps each slot to a free-text recommendation.
type ClothingDescription map[Slot]string

// EnrichedClothingItem is a recommendation plus its product and photo lookups.
// Every field is populated, with fallback values when a lookup failed.
type EnrichedClothingItem struct {
	Recommendation  string `json:"recommendation"`
	ProductTitle    string `json:"productTitle"`
	PurchaseURL     string `json:"purchaseUrl"`
	Image           string `json:"image"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	ImageID         string `json:"imageId"`
}

// Product is a shoppable search result.
type Product struct {
	Title string `json:"productTitle"`
	URL   string `json:"purchaseUrl"`
}

// Photo is a stock photograph with attribution.
type Photo struct {
	URL             string `json:"image"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	ID              string `json:"imageId"`
}
