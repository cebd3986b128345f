package actions

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"meetingroom/models"

	"github.com/mitchellh/mapstructure"
)

var locationRefType = reflect.TypeOf(models.LocationRef{})

// locationRefHook turns the loosely typed building/floor/room values of a params map into
// LocationRefs: strings are names, integral numbers are ids. The resolver decides what an
// integer floor means.
func locationRefHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != locationRefType {
		return data, nil
	}
	switch v := data.(type) {
	case models.LocationRef:
		return v, nil
	case string:
		return models.RefByName(v), nil
	case int:
		return models.RefByID(v), nil
	case int32:
		return models.RefByID(int(v)), nil
	case int64:
		return models.RefByID(int(v)), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("location id must be an integer: %v", v)
		}
		return models.RefByID(int(v)), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("location id must be an integer: %s", v)
		}
		return models.RefByID(int(n)), nil
	}
	return nil, fmt.Errorf("unsupported location value %T", data)
}

// decodeParams fills out from params. Unknown keys are ignored.
func decodeParams(params models.Params, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       locationRefHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(params)); err != nil {
		return models.NewDomainError(models.InvalidRequest, "입력 형식이 올바르지 않습니다: %v", err)
	}
	return nil
}

// missingFields reports the required keys that are empty, in the given order.
func missingFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return models.NewDomainError(models.IncompleteRequest, "필수 입력이 없습니다: %s", strings.Join(missing, ", "))
}
