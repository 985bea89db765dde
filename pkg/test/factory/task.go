// Package factory builds test fixtures with fabricator. The type
// parameter picks the target shape, so the same factory serves store
// records and wire payloads.
package factory

import (
	fab "github.com/Goldziher/fabricator"
)

func NewTask[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}
