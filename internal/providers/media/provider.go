package media

import "context"

// Provider stores submission evidence files and hands the bytes back to
// the verification pipeline. FileURL values are opaque to callers.
type Provider interface {
	Save(ctx context.Context, name string, data []byte) (fileURL string, err error)
	Fetch(ctx context.Context, fileURL string) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Save(ctx context.Context, name string, data []byte) (string, error) {
	return name, nil
}

func (p *NoOpProvider) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	return nil, nil
}
