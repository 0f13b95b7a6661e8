package reekwest

import "strings"

// matchTemplate matches a concrete request path against a path template.
// Template segments of the form {name} capture the corresponding path
// segment; all other segments must match exactly. Captured variables never
// span a slash and never match an empty segment.
func matchTemplate(template, path string) (map[string]string, bool) {
	tsegs := splitPath(template)
	psegs := splitPath(path)
	if len(tsegs) != len(psegs) {
		return nil, false
	}

	vars := make(map[string]string)
	for i, t := range tsegs {
		if name, ok := templateVar(t); ok {
			if psegs[i] == "" {
				return nil, false
			}
			vars[name] = psegs[i]
			continue
		}
		if t != psegs[i] {
			return nil, false
		}
	}
	return vars, true
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func templateVar(seg string) (string, bool) {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
