package state

import (
	"reflect"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/mitchellh/mapstructure"
)

var (
	snowflakeType = reflect.TypeOf(snowflake.ID(0))
	timeType      = reflect.TypeOf(time.Time{})
)

// patchInto merges a partial payload into target field by field. Keys
// absent from data leave their fields untouched, which is exactly the
// in-place patch semantics updates need.
func patchInto(target any, data RawData) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decodeSnowflakeHook,
			decodeTimeHook,
		),
		Result:           target,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// The gateway serializes snowflakes as decimal strings. json.Number is
// string-kinded too, so go through reflect instead of asserting.
func decodeSnowflakeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != snowflakeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return snowflake.ID(0), nil
	}
	return snowflake.Parse(s)
}

func decodeTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	return time.Parse(time.RFC3339, reflect.ValueOf(data).String())
}
