package ports

import "github.com/ghalamif/AstraLink/internal/domain"

// Decoder turns one raw feed message into a Sample.
type Decoder interface {
	Decode(raw []byte) (domain.Sample, error)
}
