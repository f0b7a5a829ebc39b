package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

// Resolve looks up the registered LoggerService in the container and
// returns it, or a named child when name is set. The name accepts the
// same "logger:<name>" notation used in struct tags.
func Resolve(ctx context.Context, sc *container.ServiceContainer, name string) (LoggerService, error) {
	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService: no logger service registered")
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved service is not a LoggerService")
	}

	if strings.HasPrefix(strings.ToLower(name), "logger:") {
		name = name[len("logger:"):]
	}
	if name = strings.TrimSpace(name); name != "" && !strings.EqualFold(name, "logger") {
		return base.Named(name), nil
	}

	return base, nil
}
