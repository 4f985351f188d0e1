package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0
	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2002
	SynUnclosedBrace      Code = 2003
	SynExpectIdentifier   Code = 2004
	SynExpectExpression   Code = 2005
	SynFlagsExpectBody    Code = 2006
	SynFlagsExpectRBrace  Code = 2007
	SynUnexpectedTopLevel Code = 2008
	SynPackagePosition    Code = 2009
	SynExpectComma        Code = 2010

	// Flag sets
	FlgInfo                   Code = 3000
	FlgStructural             Code = 3001
	FlgInvalidExpression      Code = 3002
	FlgUnresolvedDiscriminant Code = 3003
	FlgOversized              Code = 3004
	FlgDuplicateVariant       Code = 3005
	FlgDuplicateSet           Code = 3006
	FlgEmptyFile              Code = 3007
	FlgNameCollision          Code = 3008

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	ProjInfo              Code = 5000
	ProjInvalidManifest   Code = 5001
	ProjVersionMismatch   Code = 5002
	ProjInvalidOption     Code = 5003
	ProjInvalidPackageDir Code = 5004

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Bad number",
		LexTokenTooLong:             "Token too long",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedParen:            "Unclosed parenthesis",
		SynUnclosedBrace:            "Unclosed brace",
		SynExpectIdentifier:         "Expect identifier",
		SynExpectExpression:         "Expect expression",
		SynFlagsExpectBody:          "Expected '{' for flags body",
		SynFlagsExpectRBrace:        "Expected '}' after flags body",
		SynUnexpectedTopLevel:       "Unexpected top level",
		SynPackagePosition:          "Package clause must appear at the top of the file",
		SynExpectComma:              "Expect ',' between variants",
		FlgInfo:                     "Flag set information",
		FlgStructural:               "Flag variant carries associated data",
		FlgInvalidExpression:        "Invalid discriminant expression",
		FlgUnresolvedDiscriminant:   "Unresolved discriminant",
		FlgOversized:                "Flag set does not fit in 128 bits",
		FlgDuplicateVariant:         "Duplicate flag variant",
		FlgDuplicateSet:             "Duplicate flag set",
		FlgEmptyFile:                "File declares no flag sets",
		FlgNameCollision:            "Generated identifier collision",
		IOLoadFileError:             "I/O load file error",
		IOWriteFileError:            "I/O write file error",
		ProjInfo:                    "Project information",
		ProjInvalidManifest:         "Invalid flagger.toml",
		ProjVersionMismatch:         "Tool version does not satisfy flagger.toml",
		ProjInvalidOption:           "Invalid generation option",
		ProjInvalidPackageDir:       "Cannot derive package name",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FLG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
