package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Баланс скобок
	BalInfo           Code = 1000
	BalUnmatchedClose Code = 1001
	BalUnclosedOpen   Code = 1002

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOFileNotFound  Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	BalInfo:           "Balance information",
	BalUnmatchedClose: "Unmatched closing parenthesis",
	BalUnclosedOpen:   "Unclosed opening parenthesis",
	IOLoadFileError:   "I/O load file error",
	IOFileNotFound:    "File not found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("BAL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// IsIO reports whether the code describes an environment problem rather than
// a defect in the scanned text.
func (c Code) IsIO() bool {
	return c >= 4000 && c < 5000
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
