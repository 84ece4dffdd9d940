// Package configbinder binds loosely typed configuration maps onto typed
// structs using mapstructure.
package configbinder

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Bind takes a map of configuration properties and binds them to a target
// struct. The target struct should use `yaml` tags; string values are weakly
// converted to numbers and booleans where the target field requires it.
func Bind(props map[string]interface{}, target interface{}) error {
	if len(props) == 0 {
		return nil
	}

	config := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "yaml",
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(props); err != nil {
		targetType := reflect.TypeOf(target)
		if targetType.Kind() == reflect.Ptr {
			targetType = targetType.Elem()
		}
		return fmt.Errorf("failed to bind properties to struct %s: %w", targetType.Name(), err)
	}

	return nil
}
