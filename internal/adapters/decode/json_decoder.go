package decode

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

// ErrUndecodable is returned for payloads that do not hold a JSON object.
var ErrUndecodable = errors.New("decode: payload is not a telemetry record")

// JSONDecoder reads flat JSON telemetry records. It never rejects a record
// because of a missing or mistyped field; those fields decode as zero.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

func (JSONDecoder) Decode(raw []byte) (domain.Sample, error) {
	if !gjson.ValidBytes(raw) {
		return domain.Sample{}, ErrUndecodable
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return domain.Sample{}, ErrUndecodable
	}

	var s domain.Sample
	doc.ForEach(func(key, value gjson.Result) bool {
		v, ok := Numeric(value)
		switch key.String() {
		case "time":
			s.Time = v
		case "altitude":
			s.Altitude = v
		case "velocity":
			s.Velocity = v
		case "temperature":
			s.Temperature = v
		case "pressure":
			s.Pressure = v
		default:
			if ok && isScalarNumber(value) {
				if s.Extra == nil {
					s.Extra = make(map[string]float64)
				}
				s.Extra[key.String()] = v
			}
		}
		return true
	})
	return s, nil
}

// Numeric coerces a JSON value the way a loosely typed feed expects: numbers
// pass through, numeric strings are parsed, booleans become 1 or 0 and
// everything else is 0. Values that overflow to ±Inf, or spell out NaN or
// Infinity, are 0 as well. The boolean reports whether the value was a
// finite number.
func Numeric(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return finite(v.Num)
	case gjson.True:
		return 1, true
	case gjson.False:
		return 0, true
	case gjson.String:
		str := strings.TrimSpace(v.Str)
		if str == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isScalarNumber keeps pass-through fields to values that were numbers on
// the wire or strings holding one; ISO timestamps and labels stay in the raw log.
func isScalarNumber(v gjson.Result) bool {
	switch v.Type {
	case gjson.Number:
		return true
	case gjson.String:
		_, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return err == nil
	default:
		return false
	}
}

var _ ports.Decoder = (*JSONDecoder)(nil)
