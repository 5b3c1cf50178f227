package preview

import (
	"context"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

// Descriptor is one preview tile.
type Descriptor struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Kind      types.MediaKind `json:"kind"`
	Size      int64           `json:"size"`
	SizeLabel string          `json:"sizeLabel"`
	Source    string          `json:"source,omitempty"`
	Ready     bool            `json:"ready"`
	Error     string          `json:"error,omitempty"`
	RemoveKey string          `json:"removeKey"`
}

// MediaURLFunc resolves the URL a video preview plays from.
type MediaURLFunc func(slot types.Slot, f types.MediaFile) string

// UpdateFunc is called once per resolved descriptor, outside any lock.
type UpdateFunc func(slot types.Slot, d Descriptor)

type Options struct {
	ThumbnailSize int
	Workers       int
	MediaURL      MediaURLFunc
	OnUpdate      UpdateFunc
}

// Renderer keeps one board per slot. Every Render replaces the slot's board
// with a new generation; results from older generations are dropped.
type Renderer struct {
	opts   Options
	mu     sync.Mutex
	boards map[types.Slot]*board
}

type board struct {
	generation uint64
	items      []Descriptor
	index      map[string]int
	done       chan struct{}
}

func NewRenderer(opts Options) *Renderer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Renderer{
		opts:   opts,
		boards: make(map[types.Slot]*board),
	}
}

// Render clears and rebuilds the descriptors for slot from files and starts
// the thumbnail tasks. It returns the placeholder descriptors immediately.
func (r *Renderer) Render(slot types.Slot, files []types.MediaFile) []Descriptor {
	r.mu.Lock()
	prev := r.boards[slot]
	b := &board{
		index: make(map[string]int, len(files)),
		done:  make(chan struct{}),
	}
	if prev != nil {
		b.generation = prev.generation + 1
	}
	for _, f := range files {
		k := f.Key().String()
		b.index[k] = len(b.items)
		b.items = append(b.items, Descriptor{
			Key:       k,
			Name:      f.Name,
			Type:      f.Type,
			Kind:      f.Kind(),
			Size:      f.Size,
			SizeLabel: tool.FormatFileSize(f.Size),
			RemoveKey: f.Name,
		})
	}
	r.boards[slot] = b
	gen := b.generation
	snapshot := cloneDescriptors(b.items)
	r.mu.Unlock()

	go r.run(slot, gen, b.done, files)
	return snapshot
}

func (r *Renderer) run(slot types.Slot, gen uint64, done chan struct{}, files []types.MediaFile) {
	defer close(done)
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, f := range files {
		g.Go(func() error {
			source, err := r.resolve(slot, f)
			r.apply(slot, gen, f.Key().String(), source, err)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Renderer) resolve(slot types.Slot, f types.MediaFile) (string, error) {
	if f.Kind() == types.MediaKindVideo {
		if detected := mimetype.Detect(f.Content); !strings.HasPrefix(detected.String(), "video/") {
			tool.DefaultLogger.Warnf("[Preview] %s declared %s but looks like %s", f.Name, f.Type, detected.String())
		}
		if r.opts.MediaURL == nil {
			return "", nil
		}
		return r.opts.MediaURL(slot, f), nil
	}
	return Thumbnail(f.Content, r.opts.ThumbnailSize)
}

func (r *Renderer) apply(slot types.Slot, gen uint64, key, source string, err error) {
	r.mu.Lock()
	b := r.boards[slot]
	if b == nil || b.generation != gen {
		r.mu.Unlock()
		return
	}
	i, ok := b.index[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	d := &b.items[i]
	d.Ready = true
	d.Source = source
	if err != nil {
		d.Error = err.Error()
		tool.DefaultLogger.Warnf("[Preview] %s: %v", d.Name, err)
	}
	resolved := *d
	r.mu.Unlock()

	if r.opts.OnUpdate != nil {
		r.opts.OnUpdate(slot, resolved)
	}
}

// Descriptors returns the current descriptors for slot.
func (r *Renderer) Descriptors(slot types.Slot) []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.boards[slot]
	if b == nil {
		return []Descriptor{}
	}
	return cloneDescriptors(b.items)
}

// Wait blocks until the latest render of slot has resolved every descriptor.
func (r *Renderer) Wait(ctx context.Context, slot types.Slot) error {
	r.mu.Lock()
	b := r.boards[slot]
	r.mu.Unlock()
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneDescriptors(in []Descriptor) []Descriptor {
	out := make([]Descriptor, len(in))
	copy(out, in)
	return out
}
