package alerts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/ergomon/internal/api/grpc/relay"
	"github.com/oshokin/ergomon/internal/config"
	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// Repository defines persistence operations for the latest alerts.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Event, error)
	Save(ctx context.Context, events []*domain.Event) error
}

// FileRepository persists the latest alerts to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) so the file
// matches what the relay returns from Latest.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when the file does not exist yet.
var ErrNotFound = errors.New("alerts not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the alerts from disk.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alerts file: %w", err)
	}

	var list structpb.ListValue
	if err = protojson.Unmarshal(contents, &list); err != nil {
		return nil, fmt.Errorf("decode alerts file: %w", err)
	}

	events, err := relay.FromList(&list)
	if err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}

	return events, nil
}

// Save writes the alerts to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, events []*domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := relay.ToList(events)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alerts file: %w", err)
	}

	return nil
}
