package predictor

import (
	"context"
	"fmt"
	"sync"
)

// Loader resolves the latest artifact for one model and remembers the last
// revision it handed out.
type Loader struct {
	source Source
	model  string

	mu      sync.Mutex
	current *Model
}

func NewLoader(source Source, model string) *Loader {
	return &Loader{source: source, model: model}
}

func (l *Loader) ModelName() string {
	return l.model
}

func (l *Loader) Source() Source {
	return l.source
}

// Load fetches and parses the artifact. changed is false when the revision
// matches the one returned previously, in which case the cached model is returned.
func (l *Loader) Load(ctx context.Context) (model *Model, changed bool, err error) {
	content, err := l.source.Fetch(ctx, l.model)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s from %s: %w", l.model, l.source.Describe(), err)
	}
	artifact, err := ParseArtifact(content)
	if err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil && l.current.Revision() == artifact.Revision {
		return l.current, false, nil
	}
	model, err = NewModel(artifact)
	if err != nil {
		return nil, false, err
	}
	l.current = model
	return model, true, nil
}
