// Package normalize turns an untrusted, already decoded WeatherAPI payload
// into a validated models.WeatherRecord.
package normalize

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"weather-lookup/models"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

type field struct {
	name string
	kind fieldKind
}

// Declared order matters: the first violation decides the reason.
var locationFields = []field{
	{"name", kindString},
	{"country", kindString},
	{"region", kindString},
	{"lat", kindNumber},
	{"lon", kindNumber},
	{"localtime", kindString},
}

var currentFields = []field{
	{"temp_c", kindNumber},
	{"temp_f", kindNumber},
	{"humidity", kindNumber},
	{"wind_kph", kindNumber},
	{"wind_mph", kindNumber},
	{"wind_dir", kindString},
	{"pressure_mb", kindNumber},
	{"pressure_in", kindNumber},
	{"feelslike_c", kindNumber},
	{"feelslike_f", kindNumber},
	{"uv", kindNumber},
}

// Top-level fields of the flat payload shape still served by older endpoints
var legacyFields = []string{"country", "temperature", "condition"}

// Normalize validates raw and projects it onto a WeatherRecord. It never
// returns a record together with an error, and it never copies fields that
// are not part of the record model.
func Normalize(raw any) (*models.WeatherRecord, error) {
	data, ok := raw.(map[string]any)
	if !ok || len(data) == 0 {
		return nil, fail(ReasonNoData, "")
	}

	locRaw, hasLocation := data["location"]
	curRaw, hasCurrent := data["current"]
	if !hasLocation || !hasCurrent {
		missing := "location"
		if hasLocation {
			missing = "current"
		}
		return nil, checkLegacy(data, missing)
	}

	loc, err := object(locRaw, "location")
	if err != nil {
		return nil, err
	}
	if err := checkFields(loc, "location", locationFields); err != nil {
		return nil, err
	}

	cur, err := object(curRaw, "current")
	if err != nil {
		return nil, err
	}
	if err := checkFields(cur, "current", currentFields); err != nil {
		return nil, err
	}

	condRaw, ok := cur["condition"]
	if !ok {
		return nil, fail(ReasonMissing, "current.condition")
	}
	if condRaw == nil {
		return nil, fail(ReasonNull, "current.condition")
	}
	cond, _ := condRaw.(map[string]any)
	if _, ok := cond["text"].(string); !ok {
		return nil, fail(ReasonType, "current.condition.text")
	}

	record := &models.WeatherRecord{
		Location: models.Location{
			Name:      loc["name"].(string),
			Country:   loc["country"].(string),
			Region:    loc["region"].(string),
			Lat:       number(loc["lat"]),
			Lon:       number(loc["lon"]),
			Localtime: loc["localtime"].(string),
		},
		Current: models.CurrentConditions{
			TempC: number(cur["temp_c"]),
			TempF: number(cur["temp_f"]),
			Condition: models.Condition{
				Text: cond["text"].(string),
				Icon: stringOr(cond["icon"]),
				Code: int(number(cond["code"])),
			},
			Humidity:   number(cur["humidity"]),
			WindKph:    number(cur["wind_kph"]),
			WindMph:    number(cur["wind_mph"]),
			WindDir:    cur["wind_dir"].(string),
			PressureMb: number(cur["pressure_mb"]),
			PressureIn: number(cur["pressure_in"]),
			FeelslikeC: number(cur["feelslike_c"]),
			FeelslikeF: number(cur["feelslike_f"]),
			UV:         number(cur["uv"]),
		},
	}

	if forecast, ok := data["forecast"].(map[string]any); ok {
		if days, ok := forecast["forecastday"].([]any); ok {
			record.Forecast = &models.Forecast{ForecastDay: decodeForecastDays(days)}
		}
	}

	return record, nil
}

// checkLegacy classifies a payload that lacks the nested location/current
// structure. It always returns an error; missing names the absent key.
func checkLegacy(data map[string]any, missing string) error {
	for _, name := range legacyFields {
		if v, ok := data[name]; ok && v == nil {
			return fail(ReasonNull, name)
		}
	}
	if v, ok := data["temperature"]; ok && !isNumber(v) {
		return fail(ReasonType, "temperature")
	}
	return fail(ReasonMissing, missing)
}

func object(v any, path string) (map[string]any, error) {
	if v == nil {
		return nil, fail(ReasonNull, path)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fail(ReasonType, path)
	}
	return obj, nil
}

func checkFields(obj map[string]any, prefix string, fields []field) error {
	for _, f := range fields {
		path := prefix + "." + f.name
		v, ok := obj[f.name]
		switch {
		case ok && v == nil:
			return fail(ReasonNull, path)
		case !ok:
			return fail(ReasonMissing, path)
		case f.kind == kindString && !isString(v):
			return fail(ReasonType, path)
		case f.kind == kindNumber && !isNumber(v):
			return fail(ReasonType, path)
		}
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// toFloat accepts json.Number and every Go integer and float kind
func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// number converts a value accepted by isNumber; anything else is zero
func number(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}

// decodeForecastDays maps the forecast days onto the typed model, one day at
// a time. Unknown keys are dropped, numeric strings such as "86" are accepted
// and numeric fields holding anything unparsable are left zero. Entries that
// still fail to decode, such as a day that is not an object, are skipped.
func decodeForecastDays(days []any) []models.ForecastDay {
	out := make([]models.ForecastDay, 0, len(days))
	for _, raw := range days {
		if _, ok := raw.(map[string]any); !ok {
			continue
		}
		var day models.ForecastDay
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       zeroUnparsableNumbers,
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &day,
		})
		if err != nil {
			continue
		}
		if err := decoder.Decode(raw); err != nil {
			continue
		}
		out = append(out, day)
	}
	return out
}

// zeroUnparsableNumbers replaces strings headed for a numeric field with their
// parsed value, or with zero when they do not parse ("high").
func zeroUnparsableNumbers(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return reflect.Zero(to).Interface(), nil
		}
		return f, nil
	}
	return data, nil
}
