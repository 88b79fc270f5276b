// Package widget holds the rendering state of a weather widget instance and
// the presenter and error reporter that write to it.
package widget

type State int

const (
	StateIdle State = iota
	StateLoading
	StateContent
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateContent:
		return "content"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type ForecastCard struct {
	Day   string `json:"day"`
	Icon  string `json:"icon"`
	Max   string `json:"max"`
	Label string `json:"label"`
}

// View is the rendering target. Field names follow the page element ids;
// the bool fields are the visibility of the toggled regions.
type View struct {
	City          string         `json:"city"`
	Date          string         `json:"date"`
	Temp          string         `json:"temp"`
	Weather       string         `json:"weather"`
	HiLow         string         `json:"hi_low"`
	Humidity      string         `json:"humidity"`
	Wind          string         `json:"wind"`
	FeelsLike     string         `json:"feels_like"`
	Pressure      string         `json:"pressure"`
	Background    string         `json:"background"`
	ForecastCards []ForecastCard `json:"forecast_cards"`
	ErrorText     string         `json:"error_text"`

	WeatherDisplay bool `json:"weather_display"`
	Forecast       bool `json:"forecast"`
	ErrorMessage   bool `json:"error_message"`
	Loading        bool `json:"loading"`
}

// State derives the visible state. An alert shown over content does not
// change it from StateContent.
func (v View) State() State {
	switch {
	case v.Loading:
		return StateLoading
	case v.WeatherDisplay:
		return StateContent
	case v.ErrorMessage:
		return StateError
	default:
		return StateIdle
	}
}

func (v *View) showLoading() {
	v.WeatherDisplay = false
	v.Forecast = false
	v.ErrorMessage = false
	v.Loading = true
}

func (v *View) hideLoading() {
	v.Loading = false
}

func (v *View) clone() View {
	c := *v
	// Copies always carry a non-nil slice so forecast_cards encodes as [].
	c.ForecastCards = make([]ForecastCard, len(v.ForecastCards))
	copy(c.ForecastCards, v.ForecastCards)
	return c
}

// ReportError shows msg in the error region and hides the content. Any
// string is accepted; a second call replaces the first message.
func ReportError(v *View, msg string) {
	v.ErrorText = msg
	v.ErrorMessage = true
	v.WeatherDisplay = false
	v.Forecast = false
}

// showAlert shows msg without hiding the content.
func showAlert(v *View, msg string) {
	v.ErrorText = msg
	v.ErrorMessage = true
}
