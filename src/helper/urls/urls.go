package urls

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// IDPlaceholder é o segmento de um padrão de rota substituído pela chave primária.
const IDPlaceholder = "{id}"

var (
	// ErrMissingRequest signals a programming error: absolute URLs need the current request.
	ErrMissingRequest = errors.New("the current request is required to build absolute URLs")

	// ErrNoReverseMatch signals that no route is registered under the given name.
	ErrNoReverseMatch = errors.New("no reverse match")
)

// Registry mapeia nomes de rota ("motion-detail") para padrões ("/motion/{id}/").
// É montado uma única vez na inicialização e não muda depois.
type Registry struct {
	routes map[string]string
	names  []string
}

func NewRegistry(routes map[string]string) (*Registry, error) {
	registry := &Registry{
		routes: make(map[string]string, len(routes)),
		names:  make([]string, 0, len(routes)),
	}

	for name, pattern := range routes {
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("urls.NewRegistry - pattern %q of route %q must start with /", pattern, name)
		}
		if strings.Count(pattern, IDPlaceholder) > 1 {
			return nil, fmt.Errorf("urls.NewRegistry - pattern %q of route %q has more than one %s", pattern, name, IDPlaceholder)
		}
		registry.routes[name] = pattern
		registry.names = append(registry.names, name)
	}
	sort.Strings(registry.names)

	return registry, nil
}

func (r *Registry) HasRoute(name string) bool {
	_, ok := r.routes[name]
	return ok
}

// Pattern returns the path pattern registered under name.
func (r *Registry) Pattern(name string) (string, bool) {
	pattern, ok := r.routes[name]
	return pattern, ok
}

// Path builds the relative path of the named route.
func (r *Registry) Path(name string, id int64) (string, error) {
	pattern, ok := r.routes[name]
	if !ok {
		return "", fmt.Errorf("route %q: %w", name, ErrNoReverseMatch)
	}
	return strings.Replace(pattern, IDPlaceholder, strconv.FormatInt(id, 10), 1), nil
}

// Reverse builds the absolute URL of the named route for the given id,
// using the scheme and host of the current request.
func (r *Registry) Reverse(name string, id int64, req *http.Request) (string, error) {
	if req == nil {
		return "", ErrMissingRequest
	}

	path, err := r.Path(name, id)
	if err != nil {
		return "", err
	}

	return schemeOf(req) + "://" + req.Host + path, nil
}

// Resolve faz o caminho inverso de Reverse: devolve o nome da rota e o id.
// O host é ignorado, só o path é comparado.
func (r *Registry) Resolve(rawURL string) (string, int64, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, fmt.Errorf("url %q: %w", rawURL, ErrNoReverseMatch)
	}

	for _, name := range r.names {
		if id, ok := match(r.routes[name], parsed.Path); ok {
			return name, id, nil
		}
	}

	return "", 0, fmt.Errorf("path %q: %w", parsed.Path, ErrNoReverseMatch)
}

func match(pattern string, path string) (int64, bool) {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return 0, false
	}

	var id int64
	for i, part := range patternParts {
		if part == IDPlaceholder {
			value, err := strconv.ParseInt(pathParts[i], 10, 64)
			if err != nil {
				return 0, false
			}
			id = value
			continue
		}
		if part != pathParts[i] {
			return 0, false
		}
	}

	return id, true
}

func schemeOf(req *http.Request) string {
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if req.TLS != nil {
		return "https"
	}
	return "http"
}
