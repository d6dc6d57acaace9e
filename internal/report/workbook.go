// Package report renders plant inventories as spreadsheets.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// Header is the first row of every zone sheet.
var Header = []interface{}{
	"Plant Number", "Name", "Type", "Height", "Latitude", "Longitude", "Health",
	"Water Schedule", "Insects", "Fertilizers", "Soil Level", "Tree Burnt",
	"Unwanted Grass", "Water Logging", "Compound", "Image URL", "Created At", "Record Key",
}

const timeLayout = "2006-01-02 15:04:05"

// maxSheetName is the worksheet name limit of XLSX, in characters.
const maxSheetName = 31

// WriteZoneWorkbook writes an XLSX workbook with one sheet per zone. Sheets are ordered by
// zone and rows by plant number, both numeric-aware. An empty inventory yields a single
// sheet with only the header.
func WriteZoneWorkbook(w io.Writer, plants []*models.Plant) error {
	f := excelize.NewFile()
	defer f.Close()

	byZone := make(map[string][]*models.Plant)
	for _, p := range plants {
		byZone[p.Zone] = append(byZone[p.Zone], p)
	}
	zones := make([]string, 0, len(byZone))
	for z := range byZone {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return db.NaturalLess(zones[i], zones[j]) })
	if len(zones) == 0 {
		zones = append(zones, "")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(zones))
	for i, zone := range zones {
		name := uniqueSheetName(SheetName(zone), used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		if err := f.SetSheetRow(name, "A1", &Header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", name, err)
		}
		if err := f.SetColWidth(name, "A", "R", 16); err != nil {
			return fmt.Errorf("failed to size columns of %s: %w", name, err)
		}

		rows := byZone[zone]
		sort.SliceStable(rows, func(i, j int) bool { return db.NaturalLess(rows[i].PlantNumber, rows[j].PlantNumber) })
		for r, p := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := plantRow(p)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("failed to write plant %s: %w", p.ID, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName turns a zone label into a valid worksheet name.
func SheetName(zone string) string {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return "Unzoned"
	}
	name := "Zone " + strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, zone)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// uniqueSheetName suffixes name with " (2)", " (3)", ... until it differs from every name in
// used. Excel compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if limit := maxSheetName - len([]rune(suffix)); len(base) > limit {
			base = base[:limit]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func plantRow(p *models.Plant) []interface{} {
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.UTC().Format(timeLayout)
	}
	return []interface{}{
		p.PlantNumber, p.Name, p.Type, p.Height, p.Latitude, p.Longitude, string(p.Health),
		string(p.WaterSchedule), yesNo(p.Insects), yesNo(p.Fertilizers), yesNo(p.SoilLevel),
		yesNo(p.TreeBurnt), yesNo(p.UnwantedGrass), yesNo(p.WaterLogging), yesNo(p.Compound),
		p.ImageURL, created, p.ID,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
