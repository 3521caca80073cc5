package formatting

import "strings"

type frame struct {
	closer     byte
	isObject   bool
	afterColon bool
}

// Repair attempts to salvage JSON that was cut off mid-generation.
// It rewinds the input to the last complete value boundary, drops any
// dangling key or partial value, and appends the closing brackets still
// open at that point. Returns false when no parseable prefix exists.
func Repair(content string) (string, bool) {
	s := strings.TrimSpace(content)

	if matches := jsonBlockRegex.FindStringSubmatch(s); len(matches) >= 2 {
		s = strings.TrimSpace(matches[1])
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	s = s[start:]

	var stack []frame
	inString := false
	escaped := false

	last := -1
	var lastStack []frame

	mark := func(end int) {
		last = end
		lastStack = append(lastStack[:0], stack...)
	}

	valuePosition := func() bool {
		if len(stack) == 0 {
			return true
		}
		top := stack[len(stack)-1]
		return !top.isObject || top.afterColon
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if valuePosition() {
					mark(i + 1)
				}
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, frame{closer: '}', isObject: true})
		case '[':
			stack = append(stack, frame{closer: ']'})
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1].closer != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
			mark(i + 1)
			if len(stack) == 0 {
				return s[:i+1], true
			}
		case ':':
			if len(stack) > 0 {
				stack[len(stack)-1].afterColon = true
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].afterColon = false
			}
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if valuePosition() {
				mark(i + 1)
			}
		case 'e', 'l':
			word := s[:i+1]
			if valuePosition() && (strings.HasSuffix(word, "true") ||
				strings.HasSuffix(word, "false") ||
				strings.HasSuffix(word, "null")) {
				mark(i + 1)
			}
		}
	}

	if last < 0 {
		return "", false
	}

	out := strings.TrimRight(s[:last], " \t\n\r,")
	for i := len(lastStack) - 1; i >= 0; i-- {
		out += string(lastStack[i].closer)
	}
	return out, true
}

// ParseRepaired behaves like Parse but falls back to repairing truncated
// output before giving up.
func ParseRepaired[T any](content string) (T, error) {
	result, err := Parse[T](content)
	if err == nil {
		return result, nil
	}

	repaired, ok := Repair(content)
	if !ok {
		return result, err
	}
	return Parse[T](repaired)
}
