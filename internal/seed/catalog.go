// Package seed holds the sample industrial catalog used to bootstrap an empty store.
package seed

import "github.com/Skotchmaster/storefront/internal/models"

func price(v float64) *float64 { return &v }

func Products() []models.Product {
	return []models.Product{
		{
			Name:          "CNC Glass Cutting Table",
			Description:   "High-precision CNC cutting table for float glass.",
			Category:      "Cutting",
			Subcategory:   "CNC",
			Price:         450000,
			DiscountPrice: price(420000),
			Images: []string{
				"https://images.unsplash.com/photo-1581092160607-ee243b6b2f26?q=80&w=1200&auto=format&fit=crop",
			},
			Specifications: &models.Specifications{
				Dimensions: "3000 x 2000 mm",
				Weight:     "1200 kg",
				Material:   "Steel, Aluminum",
				Features:   []string{"Servo control", "Auto lubrication", "Safety sensors"},
			},
			Stock:    5,
			SKU:      "PST-CUT-001",
			IsActive: true,
			Tags:     []string{"glass", "cutting", "cnc"},
		},
		{
			Name:          "Glass Edge Polishing Machine",
			Description:   "Multi-head edging for smooth glass finish.",
			Category:      "Polishing",
			Subcategory:   "Edging",
			Price:         320000,
			DiscountPrice: price(299000),
			Images: []string{
				"https://images.unsplash.com/photo-1517433456452-f9633a875f6f?q=80&w=1200&auto=format&fit=crop",
			},
			Specifications: &models.Specifications{
				Dimensions: "2200 x 1500 mm",
				Weight:     "800 kg",
				Material:   "Steel",
				Features:   []string{"Variable speed", "Water cooling"},
			},
			Stock:    8,
			SKU:      "PST-EDGE-002",
			IsActive: true,
			Tags:     []string{"glass", "edge", "polish"},
		},
		{
			Name:        "Glass Drilling Machine",
			Description: "Automated double-head drilling for glass sheets.",
			Category:    "Drilling",
			Subcategory: "Automatic",
			Price:       210000,
			Images: []string{
				"https://images.unsplash.com/photo-1581094794329-c8112a89af12?q=80&w=1200&auto=format&fit=crop",
			},
			Specifications: &models.Specifications{
				Dimensions: "1600 x 1200 mm",
				Weight:     "600 kg",
				Material:   "Steel",
				Features:   []string{"Auto feed", "Digital control"},
			},
			Stock:    10,
			SKU:      "PST-DRL-003",
			IsActive: true,
			Tags:     []string{"glass", "drill"},
		},
	}
}
