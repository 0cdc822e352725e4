package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/born-gan/internal/imaging"
	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// ErrClosed is returned by Next after Close or after the prefetcher
// stopped on an error.
var ErrClosed = errors.New("image folder closed")

// Options configures an ImageFolder.
type Options struct {
	BatchSize int
	Height    int
	Width     int
	Shuffle   bool   // reshuffle the file order every epoch
	Seed      uint64 // shuffle seed; 0 picks one at random
	Prefetch  int    // batches decoded ahead on a background goroutine; 0 disables
}

// ImageFolder yields batches of images from a directory forever.
//
// Files are discovered once. A cursor walks the file list and wraps
// around at the end of each epoch, reshuffling when Shuffle is set, so
// every batch has exactly BatchSize images even when the directory holds
// fewer.
type ImageFolder struct {
	files []string
	opts  Options
	rng   *rand.Rand
	par   parallel.Config

	order  []int
	cursor int
	epoch  int

	batches chan result
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

type result struct {
	batch *tensor.Tensor
	err   error
}

// NewImageFolder scans dir and prepares the stream. With Prefetch > 0 a
// goroutine starts decoding immediately; call Close to stop it.
func NewImageFolder(dir string, opts Options) (*ImageFolder, error) {
	if opts.BatchSize <= 0 || opts.Height <= 0 || opts.Width <= 0 {
		return nil, fmt.Errorf("image folder: batch size %d and size %dx%d must be positive",
			opts.BatchSize, opts.Height, opts.Width)
	}
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	par := parallel.DefaultConfig()
	par.MinChunkSize = 1

	f := &ImageFolder{
		files: files,
		opts:  opts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		par:   par,
		order: make([]int, len(files)),
	}
	for i := range f.order {
		f.order[i] = i
	}
	f.shuffle()

	if opts.Prefetch > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		f.cancel = cancel
		f.batches = make(chan result, opts.Prefetch)
		f.wg.Add(1)
		go f.prefetch(ctx)
	}
	return f, nil
}

// Len returns the number of files discovered.
func (f *ImageFolder) Len() int {
	return len(f.files)
}

// Epoch returns how many times the file list has been exhausted. It is
// only meaningful without prefetching.
func (f *ImageFolder) Epoch() int {
	return f.epoch
}

// Next returns a [BatchSize, 3, Height, Width] batch with values in [-1, 1].
func (f *ImageFolder) Next(ctx context.Context) (*tensor.Tensor, error) {
	if f.batches == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return f.load()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-f.batches:
		if !ok {
			return nil, ErrClosed
		}
		return r.batch, r.err
	}
}

// Close stops the prefetcher. It is safe to call more than once.
func (f *ImageFolder) Close() {
	f.once.Do(func() {
		if f.cancel != nil {
			f.cancel()
			f.wg.Wait()
		}
	})
}

func (f *ImageFolder) prefetch(ctx context.Context) {
	defer f.wg.Done()
	defer close(f.batches)
	for {
		batch, err := f.load()
		select {
		case <-ctx.Done():
			return
		case f.batches <- result{batch: batch, err: err}:
		}
		if err != nil {
			return
		}
	}
}

// load decodes the next BatchSize files, in parallel.
func (f *ImageFolder) load() (*tensor.Tensor, error) {
	paths := make([]string, f.opts.BatchSize)
	for i := range paths {
		paths[i] = f.files[f.advance()]
	}

	h, w := f.opts.Height, f.opts.Width
	batch := tensor.Zeros(tensor.Shape{len(paths), imaging.Channels, h, w})
	data := batch.Data()
	stride := imaging.Channels * h * w
	errs := make([]error, len(paths))

	parallel.For(len(paths), func(i int) {
		img, err := imaging.Load(paths[i])
		if err != nil {
			errs[i] = err
			return
		}
		errs[i] = imaging.ToCHW(data[i*stride:(i+1)*stride], img, h, w)
	}, f.par)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return batch, nil
}

func (f *ImageFolder) advance() int {
	if f.cursor == len(f.order) {
		f.cursor = 0
		f.epoch++
		f.shuffle()
	}
	idx := f.order[f.cursor]
	f.cursor++
	return idx
}

func (f *ImageFolder) shuffle() {
	if !f.opts.Shuffle {
		return
	}
	f.rng.Shuffle(len(f.order), func(i, j int) {
		f.order[i], f.order[j] = f.order[j], f.order[i]
	})
}
