package dsl

import (
	skematic "github.com/kharioki/skematic"
)

// SchemaOf converts an arbitrary Schema[T] into an AnyAdapter so external
// schema implementations can sit in Field declarations next to the builders.
func SchemaOf[T any](s skematic.Schema[T]) AnyAdapter { return anyAdapterFromSchema[T](s) }
