package interfaces

import "context"

// Compressor reduces a chunk of concatenated turns into summary text
type Compressor interface {
	Compress(ctx context.Context, text string) (string, error)
}
