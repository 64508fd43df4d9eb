package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mfroeh/streamgrep/regex"
)

// source is a file to search, or the error that ended the walk.
type source struct {
	name string
	err  error
}

type result struct {
	src     source
	out     []byte
	matched bool
	err     error
}

// Run searches every path in order and writes the results to w. Directories
// are searched recursively and "-" reads stdin. Files are searched
// concurrently but reported in walk order. Run stops at the first source that
// cannot be read and returns its error, along with whether anything matched
// before it.
func Run(ctx context.Context, p *regex.Pattern, opts Options, paths []string, stdin io.Reader, w io.Writer) (bool, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if len(paths) > 1 || isDir(paths[0]) {
		opts.WithFilename = true
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	free := make(chan *Searcher, jobs)
	for range jobs {
		free <- New(p, opts)
	}

	pending := make(chan chan result, jobs)
	go func() {
		defer close(pending)

		var g errgroup.Group
		g.SetLimit(jobs)
		submit := func(src source) bool {
			if ctx.Err() != nil {
				return false
			}
			res := make(chan result, 1)
			select {
			case pending <- res:
			case <-ctx.Done():
				return false
			}

			if src.err != nil || src.name == stdinName {
				// errors and stdin are handled in order by the writer
				res <- result{src: src}
				return src.err == nil
			}
			g.Go(func() error {
				s := <-free
				defer func() { free <- s }()
				res <- s.searchFile(ctx, src.name)
				return nil
			})
			return true
		}

		walk(paths, submit)
		g.Wait()
	}()

	var stdinSearcher *Searcher
	matched, done := false, false
	var err error
	for res := range pending {
		if done {
			continue
		}

		r := <-res
		switch {
		case r.src.err != nil:
			r.err = r.src.err
		case r.src.name == stdinName:
			if stdinSearcher == nil {
				stdinSearcher = New(p, opts)
			}
			r.matched, r.err = stdinSearcher.Search(stdinName, stdin, w)
			if r.err != nil {
				r.err = fmt.Errorf("%s: %w", displayName(stdinName), r.err)
			}
		}

		if _, werr := w.Write(r.out); werr != nil && r.err == nil {
			r.err = werr
		}
		matched = matched || r.matched

		if r.err != nil || (r.matched && opts.Mode == Quiet) {
			err = r.err
			done = true
			cancel()
		}
	}
	return matched, err
}

func (s *Searcher) searchFile(ctx context.Context, name string) result {
	if err := ctx.Err(); err != nil {
		return result{err: err}
	}

	slog.Debug("searching", "path", name)
	f, err := os.Open(name)
	if err != nil {
		return result{err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	matched, err := s.Search(name, f, &buf)
	return result{out: buf.Bytes(), matched: matched, err: err}
}

// walk submits the files named by paths in order until submit returns false
// or a path cannot be read, which is submitted as an error.
func walk(paths []string, submit func(source) bool) {
	for _, path := range paths {
		if path == stdinName {
			if !submit(source{name: path}) {
				return
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			submit(source{name: path, err: err})
			return
		}
		if !info.IsDir() {
			if !submit(source{name: path}) {
				return
			}
			continue
		}

		stopped := false
		err = filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				info, err := os.Stat(path)
				// symlinks may be broken, in that case, just ignore them
				if errors.Is(err, fs.ErrNotExist) {
					slog.Debug("skipping broken symlink", "path", path)
					return nil
				}
				if err != nil {
					return err
				}
				// symlink may resolve to a directory, in which case we just ignore it
				if info.IsDir() {
					return nil
				}
			} else if !d.Type().IsRegular() {
				slog.Debug("skipping special file", "path", path, "mode", d.Type())
				return nil
			}

			if !submit(source{name: path}) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if stopped {
			return
		}
		if err != nil {
			submit(source{name: path, err: err})
			return
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
