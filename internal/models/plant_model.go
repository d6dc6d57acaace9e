package models

import (
	"strings"
	"time"
)

// Health is the recorded condition of a plant.
type Health string

const (
	HealthGood     Health = "Good"
	HealthDeceased Health = "Deceased"
	HealthInfected Health = "Infected"
)

// ParseHealth accepts any letter case ("good", "GOOD") and returns the canonical value.
func ParseHealth(s string) (Health, bool) {
	for _, h := range []Health{HealthGood, HealthDeceased, HealthInfected} {
		if strings.EqualFold(strings.TrimSpace(s), string(h)) {
			return h, true
		}
	}
	return "", false
}

// WaterSchedule is how often a plant is watered.
type WaterSchedule string

const (
	WaterDaily     WaterSchedule = "daily"
	WaterWeekly    WaterSchedule = "weekly"
	WaterAlternate WaterSchedule = "alternate"
)

// ParseWaterSchedule accepts any letter case and returns the canonical value.
func ParseWaterSchedule(s string) (WaterSchedule, bool) {
	for _, w := range []WaterSchedule{WaterDaily, WaterWeekly, WaterAlternate} {
		if strings.EqualFold(strings.TrimSpace(s), string(w)) {
			return w, true
		}
	}
	return "", false
}

// Plant is one tracked plant. ID is the store-assigned record key; (Zone, PlantNumber) is
// the natural key field workers use.
type Plant struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	PlantNumber   string        `json:"plantNumber"`
	Type          string        `json:"type"`
	Height        string        `json:"height"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	Health        Health        `json:"health"`
	Zone          string        `json:"zone"`
	WaterSchedule WaterSchedule `json:"waterSchedule,omitempty"`
	Insects       bool          `json:"insects"`
	Fertilizers   bool          `json:"fertilizers"`
	SoilLevel     bool          `json:"soilLevel"`
	TreeBurnt     bool          `json:"treeBurnt"`
	UnwantedGrass bool          `json:"unwantedGrass"`
	WaterLogging  bool          `json:"waterLogging"`
	Compound      bool          `json:"compound"`
	ImageURL      string        `json:"imageUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt,omitempty"`
}

// ZoneSummary counts the live plants of one zone.
type ZoneSummary struct {
	Zone  string `json:"zone"`
	Count int    `json:"count"`
}
