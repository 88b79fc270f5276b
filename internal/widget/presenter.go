package widget

import (
	"fmt"
	"math"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/conditions"
	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/services"
)

const (
	DateLayout        = "Monday 2 January 2006"
	forecastDayLayout = "Mon"

	DefaultExtremeTempC = 40
)

type Presenter struct {
	now          func() time.Time
	extremeTempC float64
}

func NewPresenter(extremeTempC float64) *Presenter {
	if extremeTempC == 0 {
		extremeTempC = DefaultExtremeTempC
	}
	return &Presenter{now: time.Now, extremeTempC: extremeTempC}
}

// Present writes every field of the report into v and shows the content.
// It reports whether the extreme-heat alert was raised alongside.
func (p *Presenter) Present(v *View, report *models.WeatherReport) bool {
	cur := report.Current

	v.City = report.Location.DisplayName
	v.Date = p.now().Format(DateLayout)
	v.Temp = formatTemp(cur.TemperatureC)
	v.Weather = cur.Condition.Label
	v.HiLow = fmt.Sprintf("%s / %s", formatTemp(cur.MinC), formatTemp(cur.MaxC))
	v.Humidity = fmt.Sprintf("%d%%", cur.HumidityPct)
	v.Wind = fmt.Sprintf("%d km/h", Round(cur.WindSpeedKmh))
	v.FeelsLike = formatTemp(cur.FeelsLikeC)
	v.Pressure = fmt.Sprintf("%d hPa", Round(cur.PressureHpa))
	v.Background = conditions.Background(cur.Condition.Label)

	v.ForecastCards = make([]ForecastCard, 0, len(report.Forecast))
	for _, day := range report.Forecast {
		v.ForecastCards = append(v.ForecastCards, ForecastCard{
			Day:   day.Date.Format(forecastDayLayout),
			Icon:  day.Condition.Icon,
			Max:   formatTemp(day.MaxC),
			Label: day.Condition.Label,
		})
	}

	v.ErrorText = ""
	v.ErrorMessage = false
	v.WeatherDisplay = true
	v.Forecast = len(v.ForecastCards) > 0

	if cur.TemperatureC > p.extremeTempC {
		showAlert(v, services.ExtremeHeat(p.extremeTempC).Message)
		return true
	}
	return false
}

// Round rounds half up, so -2.5 becomes -2.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func formatTemp(c float64) string {
	return fmt.Sprintf("%d°C", Round(c))
}
