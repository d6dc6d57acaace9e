package core

import (
	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// Document field names of a plant.
const (
	fieldName          = "name"
	fieldPlantNumber   = "plantNumber"
	fieldType          = "type"
	fieldHeight        = "height"
	fieldLatitude      = "latitude"
	fieldLongitude     = "longitude"
	fieldHealth        = "health"
	fieldZone          = "zone"
	fieldWaterSchedule = "waterSchedule"
	fieldInsects       = "insects"
	fieldFertilizers   = "fertilizers"
	fieldSoilLevel     = "soilLevel"
	fieldTreeBurnt     = "treeBurnt"
	fieldUnwantedGrass = "unwantedGrass"
	fieldWaterLogging  = "waterLogging"
	fieldCompound      = "compound"
	fieldImageURL      = "imageUrl"
	fieldCreatedAt     = "createdAt"
	fieldUpdatedAt     = "updatedAt"
)

func plantFields(p *models.Plant) db.Fields {
	f := db.Fields{
		fieldName:          p.Name,
		fieldPlantNumber:   p.PlantNumber,
		fieldType:          p.Type,
		fieldHeight:        p.Height,
		fieldLatitude:      p.Latitude,
		fieldLongitude:     p.Longitude,
		fieldHealth:        string(p.Health),
		fieldZone:          p.Zone,
		fieldInsects:       p.Insects,
		fieldFertilizers:   p.Fertilizers,
		fieldSoilLevel:     p.SoilLevel,
		fieldTreeBurnt:     p.TreeBurnt,
		fieldUnwantedGrass: p.UnwantedGrass,
		fieldWaterLogging:  p.WaterLogging,
		fieldCompound:      p.Compound,
		fieldCreatedAt:     db.ServerTimestamp,
	}
	if p.WaterSchedule != "" {
		f[fieldWaterSchedule] = string(p.WaterSchedule)
	}
	return f
}

func plantFromDocument(doc *db.Document) *models.Plant {
	p := &models.Plant{
		ID:            doc.Key,
		Name:          doc.String(fieldName),
		PlantNumber:   doc.String(fieldPlantNumber),
		Type:          doc.String(fieldType),
		Height:        doc.String(fieldHeight),
		Latitude:      doc.Float(fieldLatitude),
		Longitude:     doc.Float(fieldLongitude),
		Zone:          doc.String(fieldZone),
		Insects:       doc.Bool(fieldInsects),
		Fertilizers:   doc.Bool(fieldFertilizers),
		SoilLevel:     doc.Bool(fieldSoilLevel),
		TreeBurnt:     doc.Bool(fieldTreeBurnt),
		UnwantedGrass: doc.Bool(fieldUnwantedGrass),
		WaterLogging:  doc.Bool(fieldWaterLogging),
		Compound:      doc.Bool(fieldCompound),
		ImageURL:      doc.String(fieldImageURL),
		CreatedAt:     doc.Time(fieldCreatedAt),
		UpdatedAt:     doc.Time(fieldUpdatedAt),
	}
	// Records written before the enums were enforced keep their stored text.
	if h, ok := models.ParseHealth(doc.String(fieldHealth)); ok {
		p.Health = h
	} else {
		p.Health = models.Health(doc.String(fieldHealth))
	}
	if w, ok := models.ParseWaterSchedule(doc.String(fieldWaterSchedule)); ok {
		p.WaterSchedule = w
	} else {
		p.WaterSchedule = models.WaterSchedule(doc.String(fieldWaterSchedule))
	}
	return p
}
