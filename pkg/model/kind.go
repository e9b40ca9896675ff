package model

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -json -yaml -output kind.gen.go

// Kind is the logical type of a document. It alone determines the storage
// bucket the document lives in.
type Kind int

const (
	KindUser Kind = iota
	KindTrip
)

// buckets maps every kind to its storage bucket
var buckets = map[Kind]string{
	KindUser: "User",
	KindTrip: "Trip",
}

// Bucket returns the name of the storage bucket holding documents of this kind
func (k Kind) Bucket() string {
	if b, ok := buckets[k]; ok {
		return b
	}
	return ""
}

// Buckets returns the bucket of every kind, in kind order
func Buckets() []string {
	out := make([]string, 0, len(buckets))
	for _, k := range KindValues() {
		out = append(out, k.Bucket())
	}
	return out
}
