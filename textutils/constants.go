// Package textutils provides named ASCII character and string constants used
// throughout golly to avoid magic rune/byte literals.
package textutils

const (
	AUpperChar rune = 'A'
	ZUpperChar rune = 'Z'
	ALowerChar rune = 'a'
	ZLowerChar rune = 'z'

	ColonChar       rune = ':'
	SemiColonChar   rune = ';'
	EqualChar       rune = '='
	HashChar        rune = '#'
	DollarChar      rune = '$'
	BackSlashChar   rune = '\\'
	ForwardSlashChar rune = '/'
	OpenBraceChar   rune = '{'
	CloseBraceChar  rune = '}'
)

const (
	EmptyStr       = ""
	ColonStr       = ":"
	SemiColonStr   = ";"
	EqualStr       = "="
	PeriodStr      = "."
	ForwardSlashStr = "/"
	CloseBraceStr  = "}"
	WhiteSpaceStr  = " "
	NewLineString  = "\n"
)
