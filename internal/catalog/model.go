package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the sidebar and on category pages.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SidebarEntry is one row of the category sidebar.
type SidebarEntry struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

// Product holds the columns shared by every product variant.
type Product struct {
	ID          int64           `json:"id"`
	Type        TypeTag         `json:"type"`
	CategoryID  int64           `json:"categoryId"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Image       string          `json:"image"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
	URL         string          `json:"url"`
}

func (p *Product) Base() *Product { return p }

// Variant is a concrete product type. The set of variants is closed to this
// package; each one is listed once in the registry.
type Variant interface {
	Base() *Product
	specColumns() []string
	specValues() []any
	specTargets() []any
}

// NoteBook is a laptop with its display and hardware specs.
type NoteBook struct {
	Product
	Diagonal      string `json:"diagonal"`
	DisplayType   string `json:"displayType"`
	ProcessorFreq string `json:"processorFreq"`
	RAM           string `json:"ram"`
	Video         string `json:"video"`
}

func (n *NoteBook) specColumns() []string {
	return []string{"diagonal", "display_type", "processor_freq", "ram", "video"}
}

func (n *NoteBook) specValues() []any {
	return []any{n.Diagonal, n.DisplayType, n.ProcessorFreq, n.RAM, n.Video}
}

func (n *NoteBook) specTargets() []any {
	return []any{&n.Diagonal, &n.DisplayType, &n.ProcessorFreq, &n.RAM, &n.Video}
}

// Smartphone is a phone with its display, battery and camera specs.
type Smartphone struct {
	Product
	Diagonal    string `json:"diagonal"`
	DisplayType string `json:"displayType"`
	BatVolume   string `json:"batVolume"`
	RAM         string `json:"ram"`
	HasSDSlot   bool   `json:"hasSdSlot"`
	MainCamera  string `json:"mainCamera"`
	FrontCamera string `json:"frontCamera"`
}

func (s *Smartphone) specColumns() []string {
	return []string{"diagonal", "display_type", "bat_volume", "ram", "has_sd_slot", "main_camera", "front_camera"}
}

func (s *Smartphone) specValues() []any {
	return []any{s.Diagonal, s.DisplayType, s.BatVolume, s.RAM, s.HasSDSlot, s.MainCamera, s.FrontCamera}
}

func (s *Smartphone) specTargets() []any {
	return []any{&s.Diagonal, &s.DisplayType, &s.BatVolume, &s.RAM, &s.HasSDSlot, &s.MainCamera, &s.FrontCamera}
}

// CategoryDetail is the category page: the category, its products and the sidebar.
type CategoryDetail struct {
	Category   Category       `json:"category"`
	Products   []Variant      `json:"products"`
	Categories []SidebarEntry `json:"categories"`
}

// ProductDetail is the product page.
type ProductDetail struct {
	Product    Variant        `json:"product"`
	Type       TypeTag        `json:"type"`
	Categories []SidebarEntry `json:"categories"`
}
