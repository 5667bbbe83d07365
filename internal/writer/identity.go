package writer

import "strings"

// Identity derives the path segments of a decoded item below its kind (and
// region) directory. Each segment is percent-encoded on its own when written.
type Identity func(doc any) []string

// Field uses a string member as the file name.
func Field(name string) Identity {
	return func(doc any) []string {
		return []string{member(doc, name)}
	}
}

// After uses the part of a string member that follows marker, as in
// ":alarm:" for alarm ARNs or "/hostedzone/" for zone ids. A member without
// the marker is used whole.
func After(name, marker string) Identity {
	return func(doc any) []string {
		v := member(doc, name)
		if i := strings.Index(v, marker); i >= 0 {
			v = v[i+len(marker):]
		}
		return []string{v}
	}
}

// AfterLast uses the part of a string member that follows the last sep, as
// in the topic name at the end of an SNS topic ARN.
func AfterLast(name, sep string) Identity {
	return func(doc any) []string {
		v := member(doc, name)
		return []string{v[strings.LastIndex(v, sep)+len(sep):]}
	}
}

// Hierarchy splits a slash-delimited member into nested directories.
func Hierarchy(name string) Identity {
	return func(doc any) []string {
		return strings.Split(member(doc, name), "/")
	}
}

// Under nests the name member below the directories of a slash-delimited
// path member, the way IAM entities carry a Path.
func Under(pathName, name string) Identity {
	return func(doc any) []string {
		segments := strings.Split(member(doc, pathName), "/")
		return append(segments, member(doc, name))
	}
}

// Self uses a bare string item as its own file name.
func Self() Identity {
	return func(doc any) []string {
		s, _ := doc.(string)
		return []string{s}
	}
}

// LastSegment uses whatever follows the final slash of a bare string item,
// such as the queue name of a queue URL.
func LastSegment() Identity {
	return func(doc any) []string {
		s, _ := doc.(string)
		return []string{s[strings.LastIndex(s, "/")+1:]}
	}
}

func member(doc any, name string) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[name].(string)
	return s
}
