package cities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

var (
	ottawaSearch = models.City{ID: "45.4215,-75.6972", Name: "Ottawa", Admin1: "Ontario", Country: "Canada", Latitude: 45.4215, Longitude: -75.6972}
	kanataGPS    = models.City{ID: "45.3500,-75.6500", Name: "Kanata", Admin1: "ON", Country: "CA", Latitude: 45.35, Longitude: -75.65}
	toronto      = models.City{ID: "43.6532,-79.3832", Name: "Toronto", Admin1: "Ontario", Country: "Canada", Latitude: 43.6532, Longitude: -79.3832}
)

func TestKey(t *testing.T) {
	assert.Equal(t, "45|-76", Key(ottawaSearch))
	assert.Equal(t, "44|-79", Key(toronto))
	assert.Equal(t, "0|0", Key(models.City{Latitude: -0.4, Longitude: 0.2}))
	assert.Equal(t, "46|-75", Key(models.City{Latitude: 45.5, Longitude: -75.5}))
}

func TestKeyIgnoresName(t *testing.T) {
	a := models.City{Name: "Ottawa", Latitude: 45.1, Longitude: -75.9}
	b := models.City{Name: "Nepean (Downtown)", Latitude: 45.3, Longitude: -76.2}
	assert.Equal(t, Key(a), Key(b))
	assert.True(t, IsSame(a, b))
}

func TestIsSame(t *testing.T) {
	assert.True(t, IsSame(ottawaSearch, kanataGPS))
	assert.False(t, IsSame(ottawaSearch, toronto))
}

func TestFindByKey(t *testing.T) {
	list := []models.City{toronto, ottawaSearch}

	assert.Equal(t, 1, FindByKey(list, kanataGPS))
	assert.Equal(t, -1, FindByKey(list[:1], kanataGPS))
	assert.Equal(t, -1, FindByKey(nil, kanataGPS))
	assert.True(t, ExistsIn(list, kanataGPS))
	assert.False(t, ExistsIn([]models.City{ottawaSearch}, toronto))
}

func TestIDFromLatLon(t *testing.T) {
	assert.Equal(t, "45.4215,-75.6972", IDFromLatLon(45.4215, -75.6972))
	assert.Equal(t, "45.3500,-75.6500", IDFromLatLon(45.35, -75.65))
	assert.Equal(t, "1.0000,2.1235", IDFromLatLon(1, 2.123456))
}

func TestIDAndKeyDiffer(t *testing.T) {
	a := models.City{Latitude: 45.4215, Longitude: -75.6972}
	b := models.City{Latitude: 45.35, Longitude: -75.65}

	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, IDFromLatLon(a.Latitude, a.Longitude), IDFromLatLon(b.Latitude, b.Longitude))
}

func TestWithID(t *testing.T) {
	c := WithID(models.City{Name: "Somewhere", Latitude: 10, Longitude: 20})
	assert.Equal(t, "10.0000,20.0000", c.ID)

	kept := WithID(models.City{ID: "custom", Latitude: 10, Longitude: 20})
	assert.Equal(t, "custom", kept.ID)
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "Ottawa", d.Name)
	assert.Equal(t, IDFromLatLon(d.Latitude, d.Longitude), d.ID)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ottawa", Normalize("  Ottawa  "))
	assert.Equal(t, "new york", Normalize("New   York"))
	assert.Equal(t, "st johns", Normalize("St. John's"))
	assert.Equal(t, "", Normalize(""))
}
