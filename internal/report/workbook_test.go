package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

func TestWriteZoneWorkbook(t *testing.T) {
	plants := []*models.Plant{
		{ID: "k3", Zone: "10", PlantNumber: "12", Name: "Neem", Health: models.HealthGood, Latitude: 19.1, Longitude: 73.1},
		{ID: "k1", Zone: "2", PlantNumber: "9", Name: "Peepal", Health: models.HealthInfected, Insects: true},
		{ID: "k2", Zone: "10", PlantNumber: "3", Name: "Banyan", Health: models.HealthDeceased, CreatedAt: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteZoneWorkbook(&buf, plants))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Zone 2", "Zone 10"}, f.GetSheetList())

	rows, err := f.GetRows("Zone 10")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Plant Number", rows[0][0])
	assert.Equal(t, "3", rows[1][0])
	assert.Equal(t, "Banyan", rows[1][1])
	assert.Equal(t, "2024-03-01 08:30:00", rows[1][16])
	assert.Equal(t, "12", rows[2][0])

	rows, err = f.GetRows("Zone 2")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Yes", rows[1][8])
}

func TestWriteZoneWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteZoneWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Unzoned"}, f.GetSheetList())
	rows, err := f.GetRows("Unzoned")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Zone 4", SheetName(" 4 "))
	assert.Equal(t, "Unzoned", SheetName(""))
	assert.Equal(t, "Zone A-B", SheetName("A/B"))
	assert.Len(t, []rune(SheetName("a very long zone label that keeps going")), 31)
}

func TestWriteZoneWorkbook_CollidingSheetNames(t *testing.T) {
	long := "a very long zone label that keeps going"
	plants := []*models.Plant{
		{ID: "k1", Zone: "1/2", PlantNumber: "1"},
		{ID: "k2", Zone: "1-2", PlantNumber: "2"},
		{ID: "k3", Zone: "1:2", PlantNumber: "3"},
		{ID: "k4", Zone: long + " north", PlantNumber: "4"},
		{ID: "k5", Zone: long + " south", PlantNumber: "5"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteZoneWorkbook(&buf, plants))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 5)
	seen := make(map[string]bool)
	for _, name := range sheets {
		assert.LessOrEqual(t, len([]rune(name)), 31, name)
		rows, err := f.GetRows(name)
		require.NoError(t, err)
		require.Len(t, rows, 2, name)
		seen[rows[1][17]] = true
	}
	assert.Equal(t, map[string]bool{"k1": true, "k2": true, "k3": true, "k4": true, "k5": true}, seen)
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Zone A", uniqueSheetName("Zone A", used))
	assert.Equal(t, "Zone A (2)", uniqueSheetName("zone a", used))
	assert.Equal(t, "Zone A (3)", uniqueSheetName("Zone A", used))

	long := SheetName("a very long zone label that keeps going")
	assert.Equal(t, long, uniqueSheetName(long, used))
	second := uniqueSheetName(long, used)
	assert.Len(t, []rune(second), 31)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}
