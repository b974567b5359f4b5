package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, -2, Round(-2.5))
	assert.Equal(t, 0, Round(-0.4))
}

func TestTemp(t *testing.T) {
	assert.Equal(t, "21°", Temp(21.4, models.Celsius))
	assert.Equal(t, "71°", Temp(21.4, models.Fahrenheit))
	assert.Equal(t, "32°", Temp(0, models.Fahrenheit))
	assert.Equal(t, "-6°", Temp(-6.2, ""))
}

func TestPctAndKph(t *testing.T) {
	assert.Equal(t, "--", Pct(nil))
	assert.Equal(t, "63%", Pct(models.Float(62.6)))
	assert.Equal(t, "--", Kph(nil))
	assert.Equal(t, "12 kph", Kph(models.Float(12.2)))
}

func TestUV(t *testing.T) {
	assert.Equal(t, "--", UV(nil))
	assert.Equal(t, "5", UV(models.Float(4.75)))
	assert.Equal(t, "0", UV(models.Float(0)))
}

func TestSnowfall(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"absent", nil, "--"},
		{"none", models.Float(0), "0 cm"},
		{"millimetres", models.Float(0.34), "3 mm"},
		{"centimetres", models.Float(2.26), "2.3 cm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snowfall(tt.in))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 23, Clamp(40, 0, 23))
	assert.Equal(t, 0, Clamp(-1, 0, 23))
	assert.Equal(t, 7, Clamp(7, 0, 23))
}
