package timeline

import (
	"context"
	"os"
	"runtime"

	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"

	"github.com/kurishiro/voxlayer/pkg/cache"
	"github.com/kurishiro/voxlayer/pkg/errors"
)

// AudioOption configures BuildAudio.
type AudioOption func(*audioBuilder)

type audioBuilder struct {
	cache   cache.Cache
	workers int
}

// WithCache memoizes decoded durations in the given cache. Keys include
// file size and mtime, so re-exported takes are decoded fresh.
func WithCache(c cache.Cache) AudioOption {
	return func(b *audioBuilder) { b.cache = c }
}

// WithWorkers bounds the number of concurrent duration decodes.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) AudioOption {
	return func(b *audioBuilder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// BuildAudio scans dir for .wav files exported by the synthesizer and
// builds one record per file, in lexicographic filename order, with
// cumulative timing:
//
//   - start_time: the previous record's end_time (0 for the first)
//   - end_time: start_time plus the clip's decoded duration in seconds
//   - audio_file: the clip's path
//
// Durations are decoded concurrently; accumulation happens afterwards in
// filename order, so the result is deterministic. Any decode failure
// aborts the whole build.
func BuildAudio(ctx context.Context, dir string, opts ...AudioOption) (Timeline, error) {
	b := audioBuilder{
		cache:   cache.NewNullCache(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&b)
	}

	paths, err := listFiles(dir, ".wav")
	if err != nil {
		return nil, err
	}

	durations := make([]float64, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, path := range paths {
		g.Go(func() error {
			d, err := b.duration(gctx, path)
			if err != nil {
				return err
			}
			durations[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var t Timeline
	start := 0.0
	for i, path := range paths {
		end := start + durations[i]
		rec := NewRecord()
		rec.Set("start_time", start)
		rec.Set("end_time", end)
		rec.Set("audio_file", path)
		t = append(t, rec)
		start = end
	}
	return t, nil
}

// duration returns the decoded duration of one clip in seconds,
// consulting the cache first.
func (b audioBuilder) duration(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	key := cache.DurationKey(path, info.Size(), info.ModTime())

	if data, hit, err := b.cache.Get(ctx, key); err == nil && hit {
		if seconds, ok := cache.ParseDuration(data); ok {
			return seconds, nil
		}
	}

	seconds, err := wavDuration(path)
	if err != nil {
		return 0, err
	}
	// Cache failures are not build failures.
	_ = b.cache.Set(ctx, key, cache.FormatDuration(seconds), 0)
	return seconds, nil
}

// wavDuration decodes the duration of a WAV file in seconds. The
// duration is the PCM data chunk's size over the byte rate; the RIFF
// chunk size also counts the header, so Decoder.Duration overstates it.
func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if err := d.FwdToPCM(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeDecode, err, "failed to decode %s", path)
	}
	if d.AvgBytesPerSec == 0 {
		return 0, errors.New(errors.ErrCodeDecode, "failed to decode %s: zero byte rate", path)
	}
	return float64(d.PCMLen()) / float64(d.AvgBytesPerSec), nil
}
