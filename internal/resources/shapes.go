package resources

import "github.com/yairfalse/cfs/internal/shape"

// Shapes shared by several kinds.

func nameString() *shape.StringShape { return shape.String().Max(500) }

func textString() *shape.StringShape { return shape.String().Min(0) }

func nameList() shape.Shape { return shape.Array(nameString()) }

// enum restricts a string to values. SDK enums marshal an unset value as "",
// which counts as absent.
func enum(values ...string) *shape.StringShape {
	return shape.String().Min(0).OneOf(append([]string{""}, values...)...)
}

func tagList(key, value string) shape.Shape {
	return shape.Array(shape.Object(
		shape.Optional(key, shape.String().Max(128)),
		shape.Optional(value, shape.String().Min(0).Max(256)),
	))
}

// identifiers bounds a page of bare names, such as table names or queue URLs.
func identifiers(maxLen int) shape.Shape {
	return shape.Array(shape.String().Max(maxLen)).Max(10000)
}

func bounded(item shape.Shape, n int) shape.Shape {
	return shape.Array(item).Max(n)
}
