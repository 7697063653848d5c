package model

// MetadataType tags a metadata node's stored value. It is distinct from the
// Go type of MetadataValue because Text and Json are both carried in a
// string, and Null carries no value at all.
type MetadataType uint8

const (
	MetadataTypeDefault MetadataType = iota // infer from the variant held by the value
	MetadataTypeNull
	MetadataTypeInt32
	MetadataTypeDouble
	MetadataTypeText
	MetadataTypeJson
	MetadataTypeInvalid
)

// MetadataValue is a tagged variant of {none, int32, double, string}.
type MetadataValue struct {
	kind   metadataValueKind
	i32    int32
	f64    float64
	str    string
}

type metadataValueKind uint8

const (
	metadataValueNone metadataValueKind = iota
	metadataValueInt32
	metadataValueDouble
	metadataValueString
)

// NoValue is the empty metadata value (monostate in the C++ original).
var NoValue = MetadataValue{kind: metadataValueNone}

func Int32Value(v int32) MetadataValue   { return MetadataValue{kind: metadataValueInt32, i32: v} }
func DoubleValue(v float64) MetadataValue { return MetadataValue{kind: metadataValueDouble, f64: v} }
func StringValue(v string) MetadataValue  { return MetadataValue{kind: metadataValueString, str: v} }

func (v MetadataValue) IsNone() bool   { return v.kind == metadataValueNone }
func (v MetadataValue) IsInt32() bool  { return v.kind == metadataValueInt32 }
func (v MetadataValue) IsDouble() bool { return v.kind == metadataValueDouble }
func (v MetadataValue) IsString() bool { return v.kind == metadataValueString }

func (v MetadataValue) Int32() int32    { return v.i32 }
func (v MetadataValue) Double() float64 { return v.f64 }
func (v MetadataValue) String() string  { return v.str }

// MetadataItemFlags selects which fields EnumerateItems/GetItem populate.
type MetadataItemFlags uint8

const (
	MetadataFlagNone MetadataItemFlags = 0

	MetadataFlagPrimaryKey MetadataItemFlags = 1 << iota
	MetadataFlagName
	MetadataFlagTypeAndValue
	MetadataFlagCompletePath
)

// MetadataItem is a node in the document-metadata forest.
type MetadataItem struct {
	Pk           int64
	Name         string
	Type         MetadataType
	Value        MetadataValue
	CompletePath string
}
