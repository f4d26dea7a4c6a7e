package gristle

import (
	"strconv"
)

// Processing constants
const (
	// DefaultSampleLines is the maximum number of lines the detector inspects
	DefaultSampleLines = 100
	// DefaultSampleBytes is the maximum number of bytes the detector inspects
	DefaultSampleBytes = 64 * 1024
	// DefaultConsistency is the share of sample lines that must agree on a delimiter count
	DefaultConsistency = 0.9
	// DefaultMaxDistinct is the number of distinct values a frequency table keeps
	DefaultMaxDistinct = 50000
	// DefaultQueueSize is the number of records buffered between pipeline stages
	DefaultQueueSize = 1024
	// MinQueueSize is the minimum allowed queue size
	MinQueueSize = 1
)

// Record represents one delimited record as a slice of string fields.
// Records handed out by this package are never reused by it.
type Record []string

// Field returns the value at index, or "" and false when the record is too short.
func (r Record) Field(index int) (string, bool) {
	if index < 0 || index >= len(r) {
		return "", false
	}
	return r[index], true
}

// QueueSize represents the capacity of the channel between pipeline stages
type QueueSize int

// NewQueueSize creates a new QueueSize with validation
func NewQueueSize(size int) QueueSize {
	if size < MinQueueSize {
		return QueueSize(DefaultQueueSize)
	}
	return QueueSize(size)
}

// Int returns the int value of QueueSize
func (qs QueueSize) Int() int {
	return int(qs)
}

// String returns the string representation of QueueSize
func (qs QueueSize) String() string {
	return strconv.Itoa(int(qs))
}

// IsValid checks if the queue size is valid
func (qs QueueSize) IsValid() bool {
	return int(qs) >= MinQueueSize
}

// columnType is the value type inferred for a column
type columnType int

const (
	// columnTypeText represents free text
	columnTypeText columnType = iota
	// columnTypeInteger represents whole numbers
	columnTypeInteger
	// columnTypeReal represents floating point numbers
	columnTypeReal
	// columnTypeDatetime represents dates, times and timestamps
	columnTypeDatetime
)

// String returns the name of the column type
func (ct columnType) String() string {
	switch ct {
	case columnTypeInteger:
		return "integer"
	case columnTypeReal:
		return "real"
	case columnTypeDatetime:
		return "datetime"
	default:
		return "text"
	}
}
