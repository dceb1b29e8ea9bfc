package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json"
	"github.com/viant/structload/internal/typedef"
)

// Loader loads a JSON document into an instance of a defined type and prints selected values
type Loader struct {
	schema    *typedef.Schema
	typeName  string
	inputPath string
	selectors []*structload.Selector
	options   []json.Option
	logger    zerolog.Logger
	out       io.Writer
	instance  interface{}
}

// NewLoader creates a loader, selectors default to all elements of the loaded type
func NewLoader(schema *typedef.Schema, typeName, inputPath string, selectors []string, options []json.Option, logger zerolog.Logger, out io.Writer) (*Loader, error) {
	instance, err := schema.New(typeName)
	if err != nil {
		return nil, err
	}
	if len(selectors) == 0 {
		class, _ := schema.Class(typeName)
		for _, element := range class.Elements {
			selectors = append(selectors, element.Name)
		}
	}
	ret := &Loader{
		schema:    schema,
		typeName:  typeName,
		inputPath: inputPath,
		logger:    logger,
		out:       out,
		instance:  instance,
	}
	for _, expr := range selectors {
		selector, err := schema.Registry().NewSelector(expr)
		if err != nil {
			return nil, err
		}
		ret.selectors = append(ret.selectors, selector)
	}
	ret.options = append([]json.Option{json.WithRegistry(schema.Registry()), json.WithLogger(logger)}, options...)
	return ret, nil
}

// Instance returns loaded instance, it is reused across loads
func (l *Loader) Instance() interface{} {
	return l.instance
}

// Load reads input and loads it into the instance, a load that did not complete returns *json.LoadError
func (l *Loader) Load() error {
	data, err := os.ReadFile(l.inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", l.inputPath, err)
	}
	code, err := json.Load(l.instance, data, l.options...)
	fmt.Fprintf(l.out, "result: %v\n", code)
	if err != nil {
		return err
	}
	for _, selector := range l.selectors {
		value, err := selector.Value(l.instance)
		if err != nil {
			fmt.Fprintf(l.out, "%v: error: %v\n", selector.Path(), err)
			continue
		}
		fmt.Fprintf(l.out, "%v: %v\n", selector.Path(), value)
	}
	return nil
}

// Watch reloads input whenever it changes until context is done
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	target, err := filepath.Abs(l.inputPath)
	if err != nil {
		return err
	}
	// editors often replace files, the parent directory keeps the watch alive
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %v: %w", l.inputPath, err)
	}
	l.logger.Info().Str("path", l.inputPath).Msg("watching")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := l.Load(); err != nil {
				l.logger.Warn().Err(err).Str("path", l.inputPath).Msg("reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn().Err(err).Msg("watch error")
		}
	}
}
