package jsparse

// Token kinds for the JS/TS subset the pipeline inspects. Anything the
// pipeline does not care about still has to tokenize cleanly so that
// surrounding code can be skipped.
type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
	pos  uint32
}

// lex tokenizes src in one pass. Unterminated strings and comments consume
// to end of input instead of failing; the parser decides what is an error.
func lex(src []byte) []token {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		case c == '"' || c == '\'' || c == '`':
			quote := c
			start := i
			i++
			var buf []byte
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' && i+1 < len(src) {
					i++
				}
				buf = append(buf, src[i])
				i++
			}
			i++ // closing quote
			toks = append(toks, token{kind: tokString, text: string(buf), pos: uint32(start)})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(src[start:i]), pos: uint32(start)})
		case c == '=' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{kind: tokPunct, text: "=>", pos: uint32(i)})
			i += 2
		default:
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: uint32(i)})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: uint32(len(src))})
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
