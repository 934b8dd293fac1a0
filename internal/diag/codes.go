package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Ввод-вывод и декодирование документов
	IOInfo               Code = 1000
	IOLoadFileError      Code = 1001
	IOMissingFile        Code = 1002
	IOUnknownExtension   Code = 1003
	IODecodeError        Code = 1004
	IODuplicateKey       Code = 1005
	IONotAMapping        Code = 1006
	IOInterestingFile    Code = 1007
	IOCacheUnavailable   Code = 1008
	IOUnsupportedVersion Code = 1009

	// Схемы
	SchInfo      Code = 2000
	SchMismatch  Code = 2001
	SchUnknownID Code = 2002
	SchViolation Code = 2003
	SchMissingID Code = 2004

	// Конструирование объектов
	ObjInfo               Code = 3000
	ObjInvalid            Code = 3001
	ObjLifetimeMismatch   Code = 3002
	ObjMissingParameter   Code = 3003
	ObjReservedExtraKey   Code = 3004
	ObjInvalidExpiry      Code = 3005
	ObjTooManyBuckets     Code = 3006
	ObjInvalidStructure   Code = 3007
	ObjMirrorNotAllowed   Code = 3008
	ObjMixedExpiry        Code = 3009
	ObjInvalidRange       Code = 3010
	ObjUnknownType        Code = 3011
	ObjInvalidLabels      Code = 3012
	ObjReservedCategory   Code = 3013
	ObjConflictingOptions Code = 3014

	// Слияние документов
	MrgInfo             Code = 4000
	MrgDuplicate        Code = 4001
	MrgReservedCategory Code = 4002
	MrgReservedPing     Code = 4003
	MrgSelfSchedule     Code = 4004
	MrgUnknownFamily    Code = 4005

	// Пост-обработка графа
	XfmInfo                  Code = 5000
	XfmDanglingDenominator   Code = 5001
	XfmDenominatorNotCounter Code = 5002
	XfmExpiryPredicate       Code = 5003

	// Линтер
	LntInfo                   Code = 6000
	LntCommonPrefix           Code = 6001
	LntCategoryGeneric        Code = 6002
	LntUnitInName             Code = 6003
	LntBugNumber              Code = 6004
	LntBaselinePing           Code = 6005
	LntMisspelledPing         Code = 6006
	LntUserLifetimeExpiration Code = 6007
	LntExpirationDateTooFar   Code = 6008
	LntEmptyDatareview        Code = 6009
	LntTypeInName             Code = 6010
	LntInvalidTags            Code = 6011
	LntTagsRequired           Code = 6012
	LntUnknownPing            Code = 6013
	LntRedundantPing          Code = 6014
	LntSuperfluousNoLint      Code = 6015

	// Генерация и запись результатов
	GenInfo            Code = 7000
	GenUnknownFormat   Code = 7001
	GenFailed          Code = 7002
	GenUnsupportedType Code = 7003
	GenWriteFailed     Code = 7004
	GenLeftover        Code = 7005
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		IOInfo:               "I/O information",
		IOLoadFileError:      "I/O load file error",
		IOMissingFile:        "Input file does not exist",
		IOUnknownExtension:   "Unknown file extension",
		IODecodeError:        "Document could not be decoded",
		IODuplicateKey:       "Duplicate key in document",
		IONotAMapping:        "Document root must be a mapping",
		IOInterestingFile:    "Interesting file could not be read",
		IOCacheUnavailable:   "Validation cache unavailable",
		IOUnsupportedVersion: "Unsupported schema version",

		SchInfo:      "Schema information",
		SchMismatch:  "$schema does not match the expected identifier",
		SchUnknownID: "Unknown schema identifier",
		SchViolation: "Schema violation",
		SchMissingID: "Missing $schema key",

		ObjInfo:               "Object information",
		ObjInvalid:            "Invalid object definition",
		ObjLifetimeMismatch:   "Lifetime not allowed for this metric type",
		ObjMissingParameter:   "Missing required parameter",
		ObjReservedExtraKey:   "Extra key uses the reserved prefix",
		ObjInvalidExpiry:      "Invalid expiry",
		ObjTooManyBuckets:     "Too many buckets",
		ObjInvalidStructure:   "Invalid object structure",
		ObjMirrorNotAllowed:   "Mirroring not allowed for this metric type",
		ObjMixedExpiry:        "Date and version based expiry mixed in one run",
		ObjInvalidRange:       "Invalid histogram range",
		ObjUnknownType:        "Unknown metric type",
		ObjInvalidLabels:      "Invalid labels",
		ObjReservedCategory:   "Category uses the reserved prefix",
		ObjConflictingOptions: "Conflicting options",

		MrgInfo:             "Merge information",
		MrgDuplicate:        "Duplicate definition",
		MrgReservedCategory: "Reserved category name",
		MrgReservedPing:     "Reserved ping name",
		MrgSelfSchedule:     "Ping schedules itself",
		MrgUnknownFamily:    "Unknown document family",

		XfmInfo:                  "Transform information",
		XfmDanglingDenominator:   "Denominator metric not found",
		XfmDenominatorNotCounter: "Denominator metric is not a counter",
		XfmExpiryPredicate:       "Expiry predicate failed",

		LntInfo:                   "Lint information",
		LntCommonPrefix:           "Common prefix in category",
		LntCategoryGeneric:        "Category name too generic",
		LntUnitInName:             "Unit in metric name",
		LntBugNumber:              "Bug number instead of URL",
		LntBaselinePing:           "Metric sent in the baseline ping",
		LntMisspelledPing:         "Misspelled ping name",
		LntUserLifetimeExpiration: "Expiring metric with user lifetime",
		LntExpirationDateTooFar:   "Expiration date too far in the future",
		LntEmptyDatareview:        "Empty data review entry",
		LntTypeInName:             "Metric type in name",
		LntInvalidTags:            "Unknown tag",
		LntTagsRequired:           "Tags required",
		LntUnknownPing:            "Unknown ping",
		LntRedundantPing:          "Redundant word in ping name",
		LntSuperfluousNoLint:      "Superfluous no_lint entry",

		GenInfo:            "Generation information",
		GenUnknownFormat:   "Unknown output format",
		GenFailed:          "Generator failed",
		GenUnsupportedType: "Metric type not supported by generator",
		GenWriteFailed:     "Output could not be written",
		GenLeftover:        "Unexpected file left in output directory",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SCH%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OBJ%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MRG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("XFM%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("GEN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
