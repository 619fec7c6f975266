package shell

import (
	"os"
	"strings"
)

// VarError reports a ${VAR:?message} expansion whose variable was unset or
// empty.
type VarError struct {
	Var     string
	Message string
}

func (e *VarError) Error() string {
	if e.Message == "" {
		return e.Var + ": parameter not set"
	}
	return e.Var + ": " + e.Message
}

// Expander performs shell-style variable expansion on a line before it is
// parsed into a pipeline. Expansion respects quoting: single-quoted text is
// left untouched, and a backslash escape suppresses the following character's
// special meaning while keeping both characters in place.
//
// Supported forms: $NAME, ${NAME}, ${NAME:-default}, ${NAME:=default},
// ${NAME:+alternate}, ${NAME:?message}, and a leading ~ for the home
// directory. An unset variable counts as unset for the braced operators even
// when defined empty. Unresolvable bare forms are left verbatim.
type Expander struct {
	// Resolve overrides variable lookup. When nil, session variables are
	// consulted first, then the process environment.
	Resolve func(sess *Session, name string) (string, bool)
}

func (x *Expander) resolve(sess *Session, name string) (string, bool) {
	if x.Resolve != nil {
		return x.Resolve(sess, name)
	}
	if sess != nil {
		if val, ok := sess.Get(name); ok {
			return val, true
		}
	}
	return os.LookupEnv(name)
}

// Expand rewrites line with all variable references substituted. A nil
// session resolves against the environment only.
func (x *Expander) Expand(line string, sess *Session) (string, error) {
	var sb strings.Builder
	sb.Grow(len(line))
	inSingle := false
	inDouble := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && !inSingle:
			sb.WriteByte(c)
			if i+1 < len(line) {
				i++
				sb.WriteByte(line[i])
			}
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			sb.WriteByte(c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			sb.WriteByte(c)
		case inSingle:
			sb.WriteByte(c)
		case c == '~' && !inDouble && atWordStart(line, i) && tildeAlone(line, i):
			sb.WriteString(homeDir())
		case c == '$' && i+1 < len(line) && line[i+1] == '{':
			end := matchingBrace(line, i+1)
			if end < 0 || end == i+2 {
				sb.WriteByte(c)
				continue
			}
			expr := line[i+2 : end]
			text, handled, err := x.expandBraced(sess, expr)
			if err != nil {
				return "", err
			}
			if handled {
				sb.WriteString(text)
			} else {
				sb.WriteString(line[i : end+1])
			}
			i = end
		case c == '$' && i+1 < len(line) && isVarStart(line[i+1]):
			j := i + 1
			for j < len(line) && isVarPart(line[j]) {
				j++
			}
			name := line[i+1 : j]
			if val, ok := x.resolve(sess, name); ok {
				sb.WriteString(val)
			} else {
				sb.WriteString(line[i:j])
			}
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// expandBraced handles the interior of a ${...} reference. handled reports
// whether the reference produced a substitution; when false the caller keeps
// the reference verbatim.
func (x *Expander) expandBraced(sess *Session, expr string) (text string, handled bool, err error) {
	colon := strings.IndexByte(expr, ':')
	if colon > 0 && colon+1 < len(expr) {
		name := expr[:colon]
		op := expr[colon+1]
		operand := expr[colon+2:]
		val, ok := x.resolve(sess, name)
		unset := !ok || val == ""
		switch op {
		case '-':
			if unset {
				return operand, true, nil
			}
			return val, true, nil
		case '=':
			if unset {
				if sess != nil {
					sess.Put(name, operand)
				}
				return operand, true, nil
			}
			return val, true, nil
		case '+':
			if unset {
				return "", true, nil
			}
			return operand, true, nil
		case '?':
			if unset {
				return "", false, &VarError{Var: name, Message: operand}
			}
			return val, true, nil
		}
	}
	val, ok := x.resolve(sess, expr)
	return val, ok, nil
}

// matchingBrace returns the index of the '}' closing the '{' at open, or -1.
func matchingBrace(line string, open int) int {
	depth := 0
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func atWordStart(line string, i int) bool {
	return i == 0 || line[i-1] == ' ' || line[i-1] == '\t'
}

func tildeAlone(line string, i int) bool {
	if i+1 >= len(line) {
		return true
	}
	next := line[i+1]
	return next == '/' || next == ' ' || next == '\t'
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "~"
	}
	return home
}

func isVarStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isVarPart(c byte) bool {
	return isVarStart(c) || (c >= '0' && c <= '9')
}
